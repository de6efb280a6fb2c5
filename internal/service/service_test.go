package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/cache"
	"github.com/mmynk/groupledger/internal/events"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/storage/sqlite"
	"github.com/mmynk/groupledger/pkg/api"
)

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type testEnv struct {
	auth      *api.AuthServiceClient
	groups    *api.GroupServiceClient
	ledger    *api.LedgerServiceClient
	store     *sqlite.SQLiteStore
	balances  *cache.BalanceCache
	publisher *recordingPublisher
}

// setupTestServer serves all three services over httptest with a fresh
// SQLite database and real JWT authentication.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("service-test-secret-key", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	balances := cache.NewBalanceCache(32, time.Minute)
	publisher := &recordingPublisher{}

	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger)
	groupSvc := NewGroupService(store, balances)
	ledgerSvc := NewLedgerService(store, WithBalanceCache(balances), WithPublisher(publisher))

	open := connect.WithInterceptors(middleware.OptionalAuth(jwtManager))
	protected := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(authSvc, open))
	mux.Handle(api.NewGroupServiceHandler(groupSvc, protected))
	mux.Handle(api.NewLedgerServiceHandler(ledgerSvc, protected))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		auth:      api.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:    api.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger:    api.NewLedgerServiceClient(http.DefaultClient, server.URL),
		store:     store,
		balances:  balances,
		publisher: publisher,
	}
}

// register creates a user and returns its session token and user id.
func (e *testEnv) register(t *testing.T, name string) (string, string) {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password-" + name,
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return resp.Msg.Token, resp.Msg.User.ID
}

// createGroup creates a group owned by token's user with the extra members
// and returns it. The creator is Members[0].
func (e *testEnv) createGroup(t *testing.T, token string, names ...string) *api.Group {
	t.Helper()

	resp, err := e.groups.CreateGroup(context.Background(), as(token, &api.CreateGroupRequest{
		Name:        "Roommates",
		MemberNames: names,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// as wraps msg in a request carrying token.
func as[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected code %v, got %v (%v)", code, got, err)
	}
}
