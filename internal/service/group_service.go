package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/cache"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/pkg/api"
)

// GroupService implements api.GroupServiceHandler.
type GroupService struct {
	store    storage.Store
	balances *cache.BalanceCache
}

// NewGroupService creates a GroupService. balances may be nil.
func NewGroupService(store storage.Store, balances *cache.BalanceCache) *GroupService {
	return &GroupService{store: store, balances: balances}
}

// CreateGroup creates a group. The caller becomes its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group name required"))
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("unknown user %s", userID))
	}
	if err != nil {
		return nil, storeError("GetUserByID", err)
	}

	members := []*models.Member{{DisplayName: user.DisplayName, UserID: user.ID, IsActive: true}}
	for _, n := range req.Msg.MemberNames {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("member names cannot be empty"))
		}
		members = append(members, &models.Member{DisplayName: n, IsActive: true})
	}

	group := &models.Group{Name: name, CreatedBy: userID}
	if err := s.store.CreateGroup(ctx, group, members); err != nil {
		return nil, storeError("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(members))
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group, members)}), nil
}

func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	group, members, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GroupResponse{Group: toAPIGroup(group, members)}), nil
}

// ListGroups returns the groups the caller created or belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, storeError("ListGroupsForUser", err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		members, err := s.store.ListMembers(ctx, g.ID)
		if err != nil {
			return nil, storeError("ListMembers", err)
		}
		out[i] = toAPIGroup(g, members)
	}

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group and its whole ledger. Only the creator may do it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	group, _, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != middleware.GetUserID(ctx) {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("only the group creator can delete it"))
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return nil, storeError("DeleteGroup", err)
	}
	if s.balances != nil {
		s.balances.Invalidate(group.ID)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a member, optionally linked to a registered user.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.MemberResponse], error) {
	group, members, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.DisplayName)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("display_name required"))
	}

	if req.Msg.UserID != "" {
		if _, err := s.store.GetUserByID(ctx, req.Msg.UserID); errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("user %q does not exist", req.Msg.UserID))
		} else if err != nil {
			return nil, storeError("GetUserByID", err)
		}
		if memberForUser(members, req.Msg.UserID) != nil {
			return nil, connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("user %q is already a member", req.Msg.UserID))
		}
	}

	member := &models.Member{
		GroupID:     group.ID,
		DisplayName: name,
		UserID:      req.Msg.UserID,
		IsActive:    true,
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, storeError("AddMember", err)
	}

	slog.Info("Member added", "group_id", group.ID, "member_id", member.ID)
	return connect.NewResponse(&api.MemberResponse{Member: toAPIMember(member)}), nil
}

// UpdateMember renames a member or marks them active or inactive. Inactive
// members keep their history and still count in balances.
func (s *GroupService) UpdateMember(ctx context.Context, req *connect.Request[api.UpdateMemberRequest]) (*connect.Response[api.MemberResponse], error) {
	_, members, err := authorize(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	member, ok := newDirectory(members)[req.Msg.MemberID]
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("member %q not found in group", req.Msg.MemberID))
	}

	if req.Msg.DisplayName != nil {
		name := strings.TrimSpace(*req.Msg.DisplayName)
		if name == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("display_name cannot be empty"))
		}
		member.DisplayName = name
	}
	if req.Msg.IsActive != nil {
		member.IsActive = *req.Msg.IsActive
	}

	if err := s.store.UpdateMember(ctx, member); err != nil {
		return nil, storeError("UpdateMember", err)
	}

	return connect.NewResponse(&api.MemberResponse{Member: toAPIMember(member)}), nil
}
