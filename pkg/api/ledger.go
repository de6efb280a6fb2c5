package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	LedgerServiceName = "groupledger.v1.LedgerService"

	LedgerServiceCreateTransactionProcedure      = "/groupledger.v1.LedgerService/CreateTransaction"
	LedgerServiceListTransactionsProcedure       = "/groupledger.v1.LedgerService/ListTransactions"
	LedgerServiceDeleteTransactionProcedure      = "/groupledger.v1.LedgerService/DeleteTransaction"
	LedgerServiceRecordSettlementProcedure       = "/groupledger.v1.LedgerService/RecordSettlement"
	LedgerServiceUpdateSettlementStatusProcedure = "/groupledger.v1.LedgerService/UpdateSettlementStatus"
	LedgerServiceListSettlementsProcedure        = "/groupledger.v1.LedgerService/ListSettlements"
	LedgerServiceGetBalancesProcedure            = "/groupledger.v1.LedgerService/GetBalances"
	LedgerServiceGetSuggestionsProcedure         = "/groupledger.v1.LedgerService/GetSuggestions"
)

type Split struct {
	MemberID string  `json:"member_id"`
	Amount   float64 `json:"amount"`
}

// Item is one line of an itemized bill. An item without assignees is shared
// by all participants.
type Item struct {
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	AssignedTo  []string `json:"assigned_to,omitempty"`
}

type Transaction struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"group_id"`
	Description string   `json:"description"`
	PayerID     string   `json:"payer_id"`
	TotalAmount float64  `json:"total_amount"`
	Splits      []*Split `json:"splits"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   int64    `json:"created_at"`
}

// CreateTransactionRequest records an expense. Shares come from, in order of
// precedence: explicit Splits, Items (proportional tax and tip over
// Subtotal), or an equal split of TotalAmount over ParticipantIDs. Empty
// ParticipantIDs means every active member.
type CreateTransactionRequest struct {
	GroupID        string   `json:"group_id"`
	Description    string   `json:"description"`
	PayerID        string   `json:"payer_id"`
	TotalAmount    float64  `json:"total_amount"`
	Subtotal       float64  `json:"subtotal,omitempty"`
	Splits         []*Split `json:"splits,omitempty"`
	Items          []*Item  `json:"items,omitempty"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

type TransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ListTransactionsRequest struct {
	GroupID string `json:"group_id"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type DeleteTransactionRequest struct {
	TransactionID string `json:"transaction_id"`
}

type DeleteTransactionResponse struct{}

type Settlement struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	FromID    string  `json:"from_id"`
	ToID      string  `json:"to_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	Note      string  `json:"note,omitempty"`
	CreatedBy string  `json:"created_by"`
	CreatedAt int64   `json:"created_at"`
}

// RecordSettlementRequest records a payment from FromID to ToID. Status is
// "pending" (default) or "completed".
type RecordSettlementRequest struct {
	GroupID string  `json:"group_id"`
	FromID  string  `json:"from_id"`
	ToID    string  `json:"to_id"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status,omitempty"`
	Note    string  `json:"note,omitempty"`
}

type UpdateSettlementStatusRequest struct {
	SettlementID string `json:"settlement_id"`
	Status       string `json:"status"`
}

type SettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type MemberBalance struct {
	MemberID    string  `json:"member_id"`
	DisplayName string  `json:"display_name"`
	TotalPaid   float64 `json:"total_paid"`
	TotalOwed   float64 `json:"total_owed"`
	NetBalance  float64 `json:"net_balance"`
}

// DebtEdge is one simplified pairwise debt: From owes To Amount.
type DebtEdge struct {
	FromID   string  `json:"from_id"`
	FromName string  `json:"from_name"`
	ToID     string  `json:"to_id"`
	ToName   string  `json:"to_name"`
	Amount   float64 `json:"amount"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	MemberBalances []*MemberBalance `json:"member_balances"`
	Debts          []*DebtEdge      `json:"debts"`
	// ZeroSumResidual is the sum of all net balances; it stays within a cent
	// of zero unless stored splits disagree with their totals.
	ZeroSumResidual float64 `json:"zero_sum_residual"`
}

// Suggestion is a proposed payment. Kind is "you_owe", "owed_to_you" or
// "others", relative to the viewer.
type Suggestion struct {
	FromID   string  `json:"from_id"`
	FromName string  `json:"from_name"`
	ToID     string  `json:"to_id"`
	ToName   string  `json:"to_name"`
	Amount   float64 `json:"amount"`
	Kind     string  `json:"kind"`
}

// GetSuggestionsRequest asks for settlement suggestions. ViewerMemberID
// defaults to the caller's member in the group.
type GetSuggestionsRequest struct {
	GroupID        string `json:"group_id"`
	ViewerMemberID string `json:"viewer_member_id,omitempty"`
}

type GetSuggestionsResponse struct {
	ViewerMemberID string        `json:"viewer_member_id"`
	Suggestions    []*Suggestion `json:"suggestions"`
}

type LedgerServiceHandler interface {
	CreateTransaction(context.Context, *connect.Request[CreateTransactionRequest]) (*connect.Response[TransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error)
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[SettlementResponse], error)
	UpdateSettlementStatus(context.Context, *connect.Request[UpdateSettlementStatusRequest]) (*connect.Response[SettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSuggestions(context.Context, *connect.Request[GetSuggestionsRequest]) (*connect.Response[GetSuggestionsResponse], error)
}

func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceCreateTransactionProcedure, connect.NewUnaryHandler(LedgerServiceCreateTransactionProcedure, svc.CreateTransaction, opts...))
	mux.Handle(LedgerServiceListTransactionsProcedure, connect.NewUnaryHandler(LedgerServiceListTransactionsProcedure, svc.ListTransactions, opts...))
	mux.Handle(LedgerServiceDeleteTransactionProcedure, connect.NewUnaryHandler(LedgerServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...))
	mux.Handle(LedgerServiceRecordSettlementProcedure, connect.NewUnaryHandler(LedgerServiceRecordSettlementProcedure, svc.RecordSettlement, opts...))
	mux.Handle(LedgerServiceUpdateSettlementStatusProcedure, connect.NewUnaryHandler(LedgerServiceUpdateSettlementStatusProcedure, svc.UpdateSettlementStatus, opts...))
	mux.Handle(LedgerServiceListSettlementsProcedure, connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts...))
	mux.Handle(LedgerServiceGetBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(LedgerServiceGetSuggestionsProcedure, connect.NewUnaryHandler(LedgerServiceGetSuggestionsProcedure, svc.GetSuggestions, opts...))
	return "/" + LedgerServiceName + "/", mux
}

type LedgerServiceClient struct {
	createTransaction      *connect.Client[CreateTransactionRequest, TransactionResponse]
	listTransactions       *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	deleteTransaction      *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
	recordSettlement       *connect.Client[RecordSettlementRequest, SettlementResponse]
	updateSettlementStatus *connect.Client[UpdateSettlementStatusRequest, SettlementResponse]
	listSettlements        *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	getBalances            *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getSuggestions         *connect.Client[GetSuggestionsRequest, GetSuggestionsResponse]
}

func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		createTransaction:      connect.NewClient[CreateTransactionRequest, TransactionResponse](httpClient, baseURL+LedgerServiceCreateTransactionProcedure, opts...),
		listTransactions:       connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+LedgerServiceListTransactionsProcedure, opts...),
		deleteTransaction:      connect.NewClient[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL+LedgerServiceDeleteTransactionProcedure, opts...),
		recordSettlement:       connect.NewClient[RecordSettlementRequest, SettlementResponse](httpClient, baseURL+LedgerServiceRecordSettlementProcedure, opts...),
		updateSettlementStatus: connect.NewClient[UpdateSettlementStatusRequest, SettlementResponse](httpClient, baseURL+LedgerServiceUpdateSettlementStatusProcedure, opts...),
		listSettlements:        connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
		getBalances:            connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		getSuggestions:         connect.NewClient[GetSuggestionsRequest, GetSuggestionsResponse](httpClient, baseURL+LedgerServiceGetSuggestionsProcedure, opts...),
	}
}

func (c *LedgerServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[CreateTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[SettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateSettlementStatus(ctx context.Context, req *connect.Request[UpdateSettlementStatusRequest]) (*connect.Response[SettlementResponse], error) {
	return c.updateSettlementStatus.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetSuggestions(ctx context.Context, req *connect.Request[GetSuggestionsRequest]) (*connect.Response[GetSuggestionsResponse], error) {
	return c.getSuggestions.CallUnary(ctx, req)
}
