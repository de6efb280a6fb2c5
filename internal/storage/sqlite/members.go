package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/groupledger/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMember(ctx context.Context, db execer, m *models.Member) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = now()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO members (id, group_id, display_name, is_active, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.GroupID, m.DisplayName, m.IsActive, nullString(m.UserID), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// AddMember adds a member to an existing group.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	return insertMember(ctx, s.db, member)
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, display_name, is_active, user_id, created_at
		 FROM members WHERE id = ?`,
		memberID,
	)
	member, err := scanMember(row)
	if err != nil {
		return nil, notFound(err, "member", memberID)
	}
	return member, nil
}

// ListMembers returns a group's members in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, display_name, is_active, user_id, created_at
		 FROM members WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// UpdateMember saves a member's display name, active flag and user link.
func (s *SQLiteStore) UpdateMember(ctx context.Context, member *models.Member) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE members SET display_name = ?, is_active = ?, user_id = ? WHERE id = ?",
		member.DisplayName, member.IsActive, nullString(member.UserID), member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return requireAffected(res, "member", member.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*models.Member, error) {
	m := &models.Member{}
	var userID sql.NullString
	if err := row.Scan(&m.ID, &m.GroupID, &m.DisplayName, &m.IsActive, &userID, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.UserID = userID.String
	return m, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
