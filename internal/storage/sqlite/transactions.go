package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/groupledger/internal/models"
)

const transactionColumns = "id, group_id, description, payer_id, total_amount, created_by, created_at"

// CreateTransaction persists a transaction and its splits.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.GroupID, t.Description, t.PayerID, t.TotalAmount, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	// Position keeps the caller's split order
	for i, split := range t.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_splits (transaction_id, position, member_id, amount) VALUES (?, ?, ?, ?)",
			t.ID, i, split.MemberID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction with its splits.
func (s *SQLiteStore) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?",
		transactionID,
	).Scan(&t.ID, &t.GroupID, &t.Description, &t.PayerID, &t.TotalAmount, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err, "transaction", transactionID)
	}

	splits, err := s.loadSplits(ctx,
		"SELECT transaction_id, member_id, amount FROM transaction_splits WHERE transaction_id = ? ORDER BY position",
		transactionID,
	)
	if err != nil {
		return nil, err
	}
	t.Splits = splits[t.ID]
	return t, nil
}

// ListTransactionsByGroup retrieves a group's transactions with splits, oldest first.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.GroupID, &t.Description, &t.PayerID, &t.TotalAmount, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	// Load every split of the group in one query instead of one per transaction
	splits, err := s.loadSplits(ctx,
		`SELECT s.transaction_id, s.member_id, s.amount
		 FROM transaction_splits s
		 JOIN transactions t ON t.id = s.transaction_id
		 WHERE t.group_id = ?
		 ORDER BY s.transaction_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	for _, t := range transactions {
		t.Splits = splits[t.ID]
	}

	return transactions, nil
}

// DeleteTransaction removes a transaction; its splits cascade.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, transactionID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(res, "transaction", transactionID)
}

// loadSplits runs a split query and groups the rows by transaction ID.
func (s *SQLiteStore) loadSplits(ctx context.Context, query string, args ...any) (map[string][]models.Split, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[string][]models.Split)
	for rows.Next() {
		var transactionID string
		var split models.Split
		if err := rows.Scan(&transactionID, &split.MemberID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits[transactionID] = append(splits[transactionID], split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}
