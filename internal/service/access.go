// Package service implements the Connect handlers of the group ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

var errNoAccess = errors.New("you are not a member of this group")

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// authorize loads a group with its members and checks that the caller
// created it or is linked to one of its members.
func authorize(ctx context.Context, store storage.Store, groupID string) (*models.Group, []*models.Member, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, nil, err
	}
	if groupID == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group_id required"))
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, storeError("GetGroup", err)
	}

	members, err := store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, storeError("ListMembers", err)
	}

	if group.CreatedBy != userID && memberForUser(members, userID) == nil {
		return nil, nil, connect.NewError(connect.CodePermissionDenied, errNoAccess)
	}
	return group, members, nil
}

// storeError maps a storage failure to a Connect error.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}

func memberForUser(members []*models.Member, userID string) *models.Member {
	for _, m := range members {
		if m.UserID != "" && m.UserID == userID {
			return m
		}
	}
	return nil
}

const unknownMemberName = "Unknown member"

// directory resolves member ids of one group to members.
type directory map[string]*models.Member

func newDirectory(members []*models.Member) directory {
	d := make(directory, len(members))
	for _, m := range members {
		d[m.ID] = m
	}
	return d
}

func (d directory) has(id string) bool {
	_, ok := d[id]
	return ok
}

// name returns the display name of id, or a placeholder for ids that are not
// members of the group.
func (d directory) name(id string) string {
	if m, ok := d[id]; ok {
		return m.DisplayName
	}
	return unknownMemberName
}

func (d directory) require(field, id string) error {
	if id == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s required", field))
	}
	if !d.has(id) {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s %q is not a member of this group", field, id))
	}
	return nil
}
