// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/groupledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations of the group ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Email must be unique.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a group together with its initial members.
	// IDs and timestamps are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group, members []*models.Member) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsForUser returns groups the user created or is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	// DeleteGroup removes a group and everything recorded in it.
	DeleteGroup(ctx context.Context, groupID string) error

	AddMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
	// ListMembers returns a group's members in the order they joined.
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)
	UpdateMember(ctx context.Context, member *models.Member) error

	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)
	// ListTransactionsByGroup returns transactions with splits, oldest first.
	ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string) error

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// ListSettlementsByGroup returns settlements of every status, oldest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	UpdateSettlementStatus(ctx context.Context, settlementID string, status models.SettlementStatus) error

	// Close releases any resources held by the store.
	Close() error
}
