package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/cache"
	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/events"
	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/pkg/api"
)

// LedgerService implements api.LedgerServiceHandler: recording transactions
// and settlements and serving netted balances and suggestions.
type LedgerService struct {
	store          storage.Store
	balances       *cache.BalanceCache
	publisher      events.Publisher
	validateSplits bool
}

type LedgerOption func(*LedgerService)

func WithBalanceCache(c *cache.BalanceCache) LedgerOption {
	return func(s *LedgerService) { s.balances = c }
}

func WithPublisher(p events.Publisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

// WithSplitValidation controls whether transactions whose splits do not add
// up to the total are rejected. It is on by default.
func WithSplitValidation(enabled bool) LedgerOption {
	return func(s *LedgerService) { s.validateSplits = enabled }
}

func NewLedgerService(store storage.Store, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{store: store, validateSplits: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.balances == nil {
		s.balances = cache.NewBalanceCache(cache.DefaultSize, cache.DefaultTTL)
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	return s
}

// CreateTransaction records an expense paid by one member.
func (s *LedgerService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	msg := req.Msg
	group, members, err := authorize(ctx, s.store, msg.GroupID)
	if err != nil {
		return nil, err
	}
	dir := newDirectory(members)

	if err := dir.require("payer_id", msg.PayerID); err != nil {
		return nil, err
	}
	if msg.TotalAmount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("total_amount: %w", ledger.ErrNonPositiveAmount))
	}

	splits, err := resolveSplits(msg, members, dir)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		GroupID:     group.ID,
		Description: describe(msg),
		PayerID:     msg.PayerID,
		TotalAmount: msg.TotalAmount,
		Splits:      splits,
		CreatedBy:   middleware.GetUserID(ctx),
	}

	if s.validateSplits {
		if err := ledger.ValidateTransaction(toLedgerTransaction(tx)); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, storeError("CreateTransaction", err)
	}

	slog.Info("Transaction created",
		"group_id", group.ID,
		"transaction_id", tx.ID,
		"total", tx.TotalAmount,
		"splits_count", len(tx.Splits),
	)
	s.afterWrite(ctx, events.TransactionCreated, group.ID, tx.ID, members)

	return connect.NewResponse(&api.TransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	group, _, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactionsByGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("ListTransactionsByGroup", err)
	}

	out := make([]*api.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = toAPITransaction(tx)
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: out}), nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	if req.Msg.TransactionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("transaction_id required"))
	}

	tx, err := s.store.GetTransaction(ctx, req.Msg.TransactionID)
	if err != nil {
		return nil, storeError("GetTransaction", err)
	}
	_, members, err := authorize(ctx, s.store, tx.GroupID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteTransaction(ctx, tx.ID); err != nil {
		return nil, storeError("DeleteTransaction", err)
	}

	slog.Info("Transaction deleted", "group_id", tx.GroupID, "transaction_id", tx.ID)
	s.afterWrite(ctx, events.TransactionDeleted, tx.GroupID, tx.ID, members)

	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}

// RecordSettlement records a payment between two members, pending unless
// the request says it already completed.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.SettlementResponse], error) {
	msg := req.Msg
	group, members, err := authorize(ctx, s.store, msg.GroupID)
	if err != nil {
		return nil, err
	}
	dir := newDirectory(members)

	if err := dir.require("from_id", msg.FromID); err != nil {
		return nil, err
	}
	if err := dir.require("to_id", msg.ToID); err != nil {
		return nil, err
	}

	status, err := models.ParseSettlementStatus(msg.Status)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if status == models.SettlementCancelled {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("a settlement cannot be recorded as cancelled"))
	}

	settlement := &models.Settlement{
		GroupID:   group.ID,
		FromID:    msg.FromID,
		ToID:      msg.ToID,
		Amount:    msg.Amount,
		Status:    status,
		CreatedBy: middleware.GetUserID(ctx),
		Note:      strings.TrimSpace(msg.Note),
	}
	if err := ledger.ValidateSettlement(toLedgerSettlement(settlement)); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, storeError("CreateSettlement", err)
	}

	slog.Info("Settlement recorded",
		"group_id", group.ID,
		"settlement_id", settlement.ID,
		"amount", settlement.Amount,
		"status", settlement.Status,
	)
	s.afterWrite(ctx, events.SettlementRecorded, group.ID, settlement.ID, members)

	return connect.NewResponse(&api.SettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// UpdateSettlementStatus completes or cancels a settlement.
func (s *LedgerService) UpdateSettlementStatus(ctx context.Context, req *connect.Request[api.UpdateSettlementStatusRequest]) (*connect.Response[api.SettlementResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	if req.Msg.SettlementID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("settlement_id required"))
	}
	if req.Msg.Status == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("status required"))
	}
	next, err := models.ParseSettlementStatus(req.Msg.Status)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, storeError("GetSettlement", err)
	}
	_, members, err := authorize(ctx, s.store, settlement.GroupID)
	if err != nil {
		return nil, err
	}

	if !settlement.Status.CanTransitionTo(next) {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("settlement is %s and cannot become %s", settlement.Status, next))
	}

	if err := s.store.UpdateSettlementStatus(ctx, settlement.ID, next); err != nil {
		return nil, storeError("UpdateSettlementStatus", err)
	}
	previous := settlement.Status
	settlement.Status = next

	slog.Info("Settlement status changed",
		"settlement_id", settlement.ID,
		"from", previous,
		"to", next,
	)
	s.afterWrite(ctx, events.SettlementStatusChanged, settlement.GroupID, settlement.ID, members)

	return connect.NewResponse(&api.SettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	group, _, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError("ListSettlementsByGroup", err)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// GetBalances returns every member's net position and the simplified
// pairwise debts of the group.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	group, members, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	res, err := s.compute(ctx, group.ID, members, "")
	if err != nil {
		return nil, err
	}

	dir := newDirectory(members)
	return connect.NewResponse(&api.GetBalancesResponse{
		MemberBalances:  toAPIBalances(res.Balances, dir),
		Debts:           toAPIDebts(res.Simplified.Edges(), dir),
		ZeroSumResidual: res.ZeroSumResidual,
	}), nil
}

// GetSuggestions proposes payments from the viewer's point of view.
func (s *LedgerService) GetSuggestions(ctx context.Context, req *connect.Request[api.GetSuggestionsRequest]) (*connect.Response[api.GetSuggestionsResponse], error) {
	group, members, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	dir := newDirectory(members)

	viewerID := req.Msg.ViewerMemberID
	if viewerID == "" {
		if m := memberForUser(members, middleware.GetUserID(ctx)); m != nil {
			viewerID = m.ID
		}
	} else if !dir.has(viewerID) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("viewer_member_id %q is not a member of this group", viewerID))
	}

	res, err := s.compute(ctx, group.ID, members, viewerID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetSuggestionsResponse{
		ViewerMemberID: viewerID,
		Suggestions:    toAPISuggestions(res.Suggestions, dir),
	}), nil
}

// compute nets the group's current ledger through the cache.
func (s *LedgerService) compute(ctx context.Context, groupID string, members []*models.Member, viewerID string) (ledger.Result, error) {
	txs, err := s.store.ListTransactionsByGroup(ctx, groupID)
	if err != nil {
		return ledger.Result{}, storeError("ListTransactionsByGroup", err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return ledger.Result{}, storeError("ListSettlementsByGroup", err)
	}

	return s.balances.Compute(groupID, ledgerInput(members, txs, settlements, viewerID)), nil
}

// afterWrite drops stale balances and announces the write with the balances
// that result from it.
func (s *LedgerService) afterWrite(ctx context.Context, eventType, groupID, subjectID string, members []*models.Member) {
	s.balances.Invalidate(groupID)

	event := events.Event{
		Type:       eventType,
		GroupID:    groupID,
		SubjectID:  subjectID,
		ActorID:    middleware.GetUserID(ctx),
		OccurredAt: time.Now().UTC(),
	}

	res, err := s.compute(ctx, groupID, members, "")
	if err != nil {
		slog.Warn("Publishing event without balances", "type", eventType, "group_id", groupID, "error", err)
	} else {
		event.Balances = make([]events.MemberBalance, len(res.Balances))
		for i, b := range res.Balances {
			event.Balances[i] = events.MemberBalance{MemberID: b.MemberID, NetBalance: b.NetBalance}
		}
	}

	events.Notify(ctx, s.publisher, event)
}

// resolveSplits derives a transaction's splits from explicit splits, items,
// or an equal split over the participants.
func resolveSplits(msg *api.CreateTransactionRequest, members []*models.Member, dir directory) ([]models.Split, error) {
	if len(msg.Splits) > 0 {
		splits := make([]models.Split, len(msg.Splits))
		for i, sp := range msg.Splits {
			if err := dir.require("split member_id", sp.MemberID); err != nil {
				return nil, err
			}
			splits[i] = models.Split{MemberID: sp.MemberID, Amount: sp.Amount}
		}
		return splits, nil
	}

	participants, err := resolveParticipants(msg.ParticipantIDs, members, dir)
	if err != nil {
		return nil, err
	}

	var splits []models.Split
	if len(msg.Items) > 0 {
		items, subtotal, err := resolveItems(msg.Items, participants)
		if err != nil {
			return nil, err
		}
		if msg.Subtotal > 0 {
			subtotal = msg.Subtotal
		}
		splits, err = calculator.ItemizedSplit(items, msg.TotalAmount, subtotal, participants)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	} else {
		splits, err = calculator.EqualSplit(msg.TotalAmount, participants)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}
	return splits, nil
}

// resolveParticipants returns the requested participants, or every active
// member when none are given.
func resolveParticipants(ids []string, members []*models.Member, dir directory) ([]string, error) {
	if len(ids) == 0 {
		for _, m := range members {
			if m.IsActive {
				ids = append(ids, m.ID)
			}
		}
		if len(ids) == 0 {
			return nil, connect.NewError(connect.CodeFailedPrecondition, calculator.ErrNoParticipants)
		}
		return ids, nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := dir.require("participant_id", id); err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant %q listed twice", id))
		}
		seen[id] = true
	}
	return ids, nil
}

// resolveItems assigns unassigned items to all participants and returns the
// items with their subtotal.
func resolveItems(in []*api.Item, participants []string) ([]calculator.Item, float64, error) {
	allowed := make(map[string]bool, len(participants))
	for _, p := range participants {
		allowed[p] = true
	}

	items := make([]calculator.Item, len(in))
	var subtotal float64
	for i, it := range in {
		assigned := it.AssignedTo
		if len(assigned) == 0 {
			assigned = participants
		}
		for _, id := range assigned {
			if !allowed[id] {
				return nil, 0, connect.NewError(connect.CodeInvalidArgument,
					fmt.Errorf("item %q is assigned to %q, who is not a participant", it.Description, id))
			}
		}
		items[i] = calculator.Item{Description: it.Description, Amount: it.Amount, AssignedTo: assigned}
		subtotal += it.Amount
	}
	if subtotal <= 0 {
		return nil, 0, connect.NewError(connect.CodeInvalidArgument, calculator.ErrZeroSubtotal)
	}
	return items, subtotal, nil
}

// describe returns the request's description, or one built from its items.
func describe(msg *api.CreateTransactionRequest) string {
	if d := strings.TrimSpace(msg.Description); d != "" {
		return d
	}

	var names []string
	for _, it := range msg.Items {
		if d := strings.TrimSpace(it.Description); d != "" {
			names = append(names, d)
		}
	}
	switch {
	case len(names) == 0:
		return "Expense"
	case len(names) <= 3:
		return strings.Join(names, ", ")
	default:
		return fmt.Sprintf("%s and %d more", strings.Join(names[:2], ", "), len(names)-2)
	}
}
