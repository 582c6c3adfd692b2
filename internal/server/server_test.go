package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/auth/session"
	"github.com/atriumhq/atrium/internal/config"
	invoicedomain "github.com/atriumhq/atrium/internal/invoice/domain"
	utilitydomain "github.com/atriumhq/atrium/internal/utility/domain"
)

type fakeAuthService struct {
	user       *authdomain.User
	loginCalls int
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	return &authdomain.User{ID: snowflake.ID(200), Email: req.Email, Role: req.Role}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	f.loginCalls++
	_ = ctx
	_ = req
	return &authdomain.LoginResult{
		User:      f.user,
		Session:   &authdomain.SessionView{Metadata: map[string]any{"user_id": f.user.ID.String()}},
		RawToken:  "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
		SessionID: snowflake.ID(300),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	_ = ctx
	if rawToken != "session-token" {
		return nil, authdomain.ErrInvalidSession
	}
	return &authdomain.Session{ID: snowflake.ID(300), UserID: f.user.ID}, nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID string, newPassword string) error {
	_ = ctx
	_ = userID
	_ = newPassword
	return nil
}

func (f *fakeAuthService) GetUser(ctx context.Context, userID snowflake.ID) (*authdomain.User, error) {
	_ = ctx
	if userID != f.user.ID {
		return nil, authdomain.ErrUserNotFound
	}
	return f.user, nil
}

type allowAllAuthz struct{}

func (allowAllAuthz) Authorize(ctx context.Context, actor, object, action string) error {
	_ = ctx
	_ = actor
	_ = object
	_ = action
	return nil
}

type fakeInvoiceService struct {
	invoicedomain.Service

	invoice invoicedomain.Invoice
}

func (f *fakeInvoiceService) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	_ = ctx
	_ = id
	return f.invoice, nil
}

type fakeUtilityService struct {
	utilitydomain.Service

	createChargeErr error
}

func (f *fakeUtilityService) CreateCharge(ctx context.Context, req utilitydomain.CreateChargeRequest) (utilitydomain.UtilityCharge, error) {
	_ = ctx
	_ = req
	if f.createChargeErr != nil {
		return utilitydomain.UtilityCharge{}, f.createChargeErr
	}
	return utilitydomain.UtilityCharge{ID: snowflake.ID(1)}, nil
}

func newTestServer(t *testing.T, user *authdomain.User) (*Server, *fakeAuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	auth := &fakeAuthService{user: user}
	s := &Server{
		engine:   engine,
		cfg:      config.Config{},
		sessions: session.NewManager(config.Config{}),
		authsvc:  auth,
		authzSvc: allowAllAuthz{},
	}
	return s, auth
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "session-token"})
	return req
}

func TestLoginSetsSessionCookie(t *testing.T) {
	user := &authdomain.User{ID: snowflake.ID(200), Email: "admin@atrium.local", Role: authdomain.RoleAdmin}
	s, auth := newTestServer(t, user)
	s.registerAuthRoutes()

	body := []byte(`{"email":"admin@atrium.local","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if auth.loginCalls != 1 {
		t.Fatalf("expected 1 login call, got %d", auth.loginCalls)
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, session.DefaultCookieName+"=session-token") {
		t.Fatalf("expected session cookie, got %q", cookie)
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	user := &authdomain.User{ID: snowflake.ID(200), Role: authdomain.RoleAdmin}
	s, _ := newTestServer(t, user)
	s.registerAPIRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/1", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTenantCannotReadForeignInvoice(t *testing.T) {
	ownTenant := snowflake.ID(7)
	user := &authdomain.User{ID: snowflake.ID(200), Role: authdomain.RoleTenant, TenantID: &ownTenant}
	s, _ := newTestServer(t, user)
	s.invoiceSvc = &fakeInvoiceService{invoice: invoicedomain.Invoice{
		ID:       snowflake.ID(1),
		TenantID: snowflake.ID(9),
	}}
	s.registerAPIRoutes()

	req := authedRequest(http.MethodGet, "/api/invoices/1", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTenantReadsOwnInvoice(t *testing.T) {
	ownTenant := snowflake.ID(7)
	user := &authdomain.User{ID: snowflake.ID(200), Role: authdomain.RoleTenant, TenantID: &ownTenant}
	s, _ := newTestServer(t, user)
	s.invoiceSvc = &fakeInvoiceService{invoice: invoicedomain.Invoice{
		ID:       snowflake.ID(1),
		TenantID: ownTenant,
	}}
	s.registerAPIRoutes()

	req := authedRequest(http.MethodGet, "/api/invoices/1", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDuplicateUtilityChargeRejected(t *testing.T) {
	user := &authdomain.User{ID: snowflake.ID(200), Role: authdomain.RoleAdmin}
	s, _ := newTestServer(t, user)
	s.utilitySvc = &fakeUtilityService{createChargeErr: utilitydomain.ErrDuplicateCharge}
	s.registerAPIRoutes()

	body := []byte(`{"type":"WATER","month":"2025-03","total_cost":120000}`)
	req := authedRequest(http.MethodPost, "/api/utilities/charges", body)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "duplicate_charge") {
		t.Fatalf("expected duplicate_charge code, got %s", rec.Body.String())
	}
}
