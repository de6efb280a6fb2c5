package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	GroupServiceName = "groupledger.v1.GroupService"

	GroupServiceCreateGroupProcedure  = "/groupledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure     = "/groupledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure   = "/groupledger.v1.GroupService/ListGroups"
	GroupServiceDeleteGroupProcedure  = "/groupledger.v1.GroupService/DeleteGroup"
	GroupServiceAddMemberProcedure    = "/groupledger.v1.GroupService/AddMember"
	GroupServiceUpdateMemberProcedure = "/groupledger.v1.GroupService/UpdateMember"
)

type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `json:"is_active"`
	UserID      string `json:"user_id,omitempty"`
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt int64     `json:"created_at"`
	Members   []*Member `json:"members"`
}

// CreateGroupRequest creates a group whose first member is the caller.
// MemberNames adds further members that are not linked to a user.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	MemberNames []string `json:"member_names"`
}

type GroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID     string `json:"group_id"`
	DisplayName string `json:"display_name"`
	UserID      string `json:"user_id,omitempty"`
}

// UpdateMemberRequest changes only the fields that are set.
type UpdateMemberRequest struct {
	GroupID     string  `json:"group_id"`
	MemberID    string  `json:"member_id"`
	DisplayName *string `json:"display_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type MemberResponse struct {
	Member *Member `json:"member"`
}

type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[MemberResponse], error)
	UpdateMember(context.Context, *connect.Request[UpdateMemberRequest]) (*connect.Response[MemberResponse], error)
}

func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceUpdateMemberProcedure, connect.NewUnaryHandler(GroupServiceUpdateMemberProcedure, svc.UpdateMember, opts...))
	return "/" + GroupServiceName + "/", mux
}

type GroupServiceClient struct {
	createGroup  *connect.Client[CreateGroupRequest, GroupResponse]
	getGroup     *connect.Client[GetGroupRequest, GroupResponse]
	listGroups   *connect.Client[ListGroupsRequest, ListGroupsResponse]
	deleteGroup  *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
	addMember    *connect.Client[AddMemberRequest, MemberResponse]
	updateMember *connect.Client[UpdateMemberRequest, MemberResponse]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:  connect.NewClient[CreateGroupRequest, GroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:     connect.NewClient[GetGroupRequest, GroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:   connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		deleteGroup:  connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		addMember:    connect.NewClient[AddMemberRequest, MemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		updateMember: connect.NewClient[UpdateMemberRequest, MemberResponse](httpClient, baseURL+GroupServiceUpdateMemberProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[MemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) UpdateMember(ctx context.Context, req *connect.Request[UpdateMemberRequest]) (*connect.Response[MemberResponse], error) {
	return c.updateMember.CallUnary(ctx, req)
}
