package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createGroup(t *testing.T, store *SQLiteStore, names ...string) (*models.Group, []*models.Member) {
	t.Helper()

	group := &models.Group{Name: "Roommates", CreatedBy: "user-1"}
	members := make([]*models.Member, len(names))
	for i, name := range names {
		members[i] = &models.Member{DisplayName: name, IsActive: true}
	}
	if err := store.CreateGroup(context.Background(), group, members); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group, members
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := New(dbPath)
	if err != nil {
		t.Fatalf("first New failed: %v", err)
	}
	first.Close()

	second, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopening an up-to-date database failed: %v", err)
	}
	second.Close()
}

func TestGroupsAndMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, members := createGroup(t, store, "Alice", "Bob", "Charlie")

	t.Run("CreateGroup generates IDs", func(t *testing.T) {
		if group.ID == "" || group.CreatedAt == 0 {
			t.Errorf("expected ID and CreatedAt, got %+v", group)
		}
		for _, m := range members {
			if m.ID == "" || m.GroupID != group.ID {
				t.Errorf("member not linked to group: %+v", m)
			}
		}
	})

	t.Run("ListMembers keeps join order", func(t *testing.T) {
		extra := &models.Member{GroupID: group.ID, DisplayName: "Diana", IsActive: true, UserID: "user-2"}
		if err := store.AddMember(ctx, extra); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}

		got, err := store.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		want := []string{"Alice", "Bob", "Charlie", "Diana"}
		if len(got) != len(want) {
			t.Fatalf("got %d members, want %d", len(got), len(want))
		}
		for i, name := range want {
			if got[i].DisplayName != name {
				t.Errorf("member %d = %s, want %s", i, got[i].DisplayName, name)
			}
		}
		if got[3].UserID != "user-2" {
			t.Errorf("UserID = %q, want user-2", got[3].UserID)
		}
	})

	t.Run("UpdateMember deactivates", func(t *testing.T) {
		bob := members[1]
		bob.IsActive = false
		bob.DisplayName = "Bobby"
		if err := store.UpdateMember(ctx, bob); err != nil {
			t.Fatalf("UpdateMember failed: %v", err)
		}

		got, err := store.GetMember(ctx, bob.ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if got.IsActive || got.DisplayName != "Bobby" {
			t.Errorf("member not updated: %+v", got)
		}
	})

	t.Run("ListGroupsForUser finds creator and member", func(t *testing.T) {
		for _, userID := range []string{"user-1", "user-2"} {
			groups, err := store.ListGroupsForUser(ctx, userID)
			if err != nil {
				t.Fatalf("ListGroupsForUser failed: %v", err)
			}
			if len(groups) != 1 || groups[0].ID != group.ID {
				t.Errorf("%s: groups = %+v", userID, groups)
			}
		}

		groups, err := store.ListGroupsForUser(ctx, "stranger")
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("stranger should see no groups, got %d", len(groups))
		}
	})

	t.Run("missing records return ErrNotFound", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup error = %v", err)
		}
		if _, err := store.GetMember(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetMember error = %v", err)
		}
		if err := store.UpdateMember(ctx, &models.Member{ID: "nonexistent-id"}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateMember error = %v", err)
		}
	})
}

func TestTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, m := createGroup(t, store, "Alice", "Bob", "Charlie")

	original := &models.Transaction{
		GroupID:     group.ID,
		Description: "Dinner",
		PayerID:     m[0].ID,
		TotalAmount: 90,
		CreatedBy:   "user-1",
		Splits: []models.Split{
			{MemberID: m[0].ID, Amount: 0},
			{MemberID: m[1].ID, Amount: 45},
			{MemberID: m[2].ID, Amount: 45},
		},
	}
	if err := store.CreateTransaction(ctx, original); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	second := &models.Transaction{
		GroupID:     group.ID,
		Description: "Taxi",
		PayerID:     m[1].ID,
		TotalAmount: 12.5,
		CreatedBy:   "user-1",
		Splits:      []models.Split{{MemberID: m[0].ID, Amount: 12.5}},
	}
	if err := store.CreateTransaction(ctx, second); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	t.Run("GetTransaction returns splits in order", func(t *testing.T) {
		got, err := store.GetTransaction(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if got.Description != "Dinner" || got.TotalAmount != 90 || got.PayerID != m[0].ID {
			t.Errorf("unexpected transaction: %+v", got)
		}
		if len(got.Splits) != 3 {
			t.Fatalf("got %d splits, want 3", len(got.Splits))
		}
		for i, split := range original.Splits {
			if got.Splits[i] != split {
				t.Errorf("split %d = %+v, want %+v", i, got.Splits[i], split)
			}
		}
	})

	t.Run("ListTransactionsByGroup attaches splits", func(t *testing.T) {
		got, err := store.ListTransactionsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListTransactionsByGroup failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d transactions, want 2", len(got))
		}
		if got[0].ID != original.ID || len(got[0].Splits) != 3 {
			t.Errorf("first transaction = %+v", got[0])
		}
		if got[1].ID != second.ID || len(got[1].Splits) != 1 {
			t.Errorf("second transaction = %+v", got[1])
		}
	})

	t.Run("DeleteTransaction", func(t *testing.T) {
		if err := store.DeleteTransaction(ctx, second.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
		if _, err := store.GetTransaction(ctx, second.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteTransaction(ctx, second.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, m := createGroup(t, store, "Alice", "Bob")

	settlement := &models.Settlement{
		GroupID:   group.ID,
		FromID:    m[1].ID,
		ToID:      m[0].ID,
		Amount:    20,
		CreatedBy: "user-1",
		Note:      "cash",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	if settlement.Status != models.SettlementPending {
		t.Errorf("default status = %q, want pending", settlement.Status)
	}

	if err := store.UpdateSettlementStatus(ctx, settlement.ID, models.SettlementCompleted); err != nil {
		t.Fatalf("UpdateSettlementStatus failed: %v", err)
	}

	got, err := store.GetSettlement(ctx, settlement.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if got.Status != models.SettlementCompleted || got.Note != "cash" || got.Amount != 20 {
		t.Errorf("unexpected settlement: %+v", got)
	}

	list, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != settlement.ID {
		t.Errorf("unexpected list: %+v", list)
	}

	if err := store.UpdateSettlementStatus(ctx, "nonexistent-id", models.SettlementCancelled); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group, m := createGroup(t, store, "Alice", "Bob")
	tx := &models.Transaction{
		GroupID: group.ID, Description: "Snacks", PayerID: m[0].ID, TotalAmount: 10, CreatedBy: "user-1",
		Splits: []models.Split{{MemberID: m[1].ID, Amount: 10}},
	}
	if err := store.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	if _, err := store.GetTransaction(ctx, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("transaction should be gone, got %v", err)
	}
	members, err := store.ListMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("members should be gone, got %d", len(members))
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID = %s, want %s", byEmail.ID, user.ID)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email || byID.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", byID)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	duplicate := models.NewUser("alice@example.com", "Other", "hash")
	if err := store.CreateUser(ctx, duplicate); err == nil {
		t.Error("expected unique email violation")
	}
}
