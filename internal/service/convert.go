package service

import (
	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		IsActive:    m.IsActive,
		UserID:      m.UserID,
	}
}

func toAPIGroup(g *models.Group, members []*models.Member) *api.Group {
	out := &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
		Members:   make([]*api.Member, len(members)),
	}
	for i, m := range members {
		out.Members[i] = toAPIMember(m)
	}
	return out
}

func toAPITransaction(tx *models.Transaction) *api.Transaction {
	out := &api.Transaction{
		ID:          tx.ID,
		GroupID:     tx.GroupID,
		Description: tx.Description,
		PayerID:     tx.PayerID,
		TotalAmount: tx.TotalAmount,
		Splits:      make([]*api.Split, len(tx.Splits)),
		CreatedBy:   tx.CreatedBy,
		CreatedAt:   tx.CreatedAt,
	}
	for i, s := range tx.Splits {
		out.Splits[i] = &api.Split{MemberID: s.MemberID, Amount: s.Amount}
	}
	return out
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		FromID:    s.FromID,
		ToID:      s.ToID,
		Amount:    s.Amount,
		Status:    string(s.Status),
		Note:      s.Note,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
	}
}

func toLedgerTransaction(tx *models.Transaction) ledger.Transaction {
	splits := make([]ledger.Split, len(tx.Splits))
	for i, s := range tx.Splits {
		splits[i] = ledger.Split{MemberID: s.MemberID, Amount: s.Amount}
	}
	return ledger.Transaction{
		ID:          tx.ID,
		PayerID:     tx.PayerID,
		Splits:      splits,
		TotalAmount: tx.TotalAmount,
	}
}

func toLedgerSettlement(s *models.Settlement) ledger.Settlement {
	return ledger.Settlement{
		ID:     s.ID,
		FromID: s.FromID,
		ToID:   s.ToID,
		Amount: s.Amount,
		Status: ledger.SettlementStatus(s.Status),
	}
}

// ledgerInput snapshots a group's ledger for the netting pipeline.
func ledgerInput(members []*models.Member, txs []*models.Transaction, settlements []*models.Settlement, viewerID string) ledger.Input {
	in := ledger.Input{
		Members:      make([]ledger.Member, len(members)),
		Transactions: make([]ledger.Transaction, len(txs)),
		Settlements:  make([]ledger.Settlement, len(settlements)),
		ViewerID:     viewerID,
	}
	for i, m := range members {
		in.Members[i] = ledger.Member{ID: m.ID, DisplayName: m.DisplayName, IsActive: m.IsActive}
	}
	for i, tx := range txs {
		in.Transactions[i] = toLedgerTransaction(tx)
	}
	for i, s := range settlements {
		in.Settlements[i] = toLedgerSettlement(s)
	}
	return in
}

func toAPIBalances(balances []ledger.MemberBalance, dir directory) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			MemberID:    b.MemberID,
			DisplayName: dir.name(b.MemberID),
			TotalPaid:   b.TotalPaid,
			TotalOwed:   b.TotalOwed,
			NetBalance:  b.NetBalance,
		}
	}
	return out
}

func toAPIDebts(edges []ledger.DebtEdge, dir directory) []*api.DebtEdge {
	out := make([]*api.DebtEdge, len(edges))
	for i, e := range edges {
		out[i] = &api.DebtEdge{
			FromID:   e.From,
			FromName: dir.name(e.From),
			ToID:     e.To,
			ToName:   dir.name(e.To),
			Amount:   e.Amount,
		}
	}
	return out
}

func toAPISuggestions(suggestions []ledger.Suggestion, dir directory) []*api.Suggestion {
	out := make([]*api.Suggestion, len(suggestions))
	for i, s := range suggestions {
		out[i] = &api.Suggestion{
			FromID:   s.FromID,
			FromName: dir.name(s.FromID),
			ToID:     s.ToID,
			ToName:   dir.name(s.ToID),
			Amount:   s.Amount,
			Kind:     string(s.Kind),
		}
	}
	return out
}
