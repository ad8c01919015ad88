package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aloks98/securevault"
	"github.com/aloks98/securevault/dashboard"
	"github.com/aloks98/securevault/identity"
	idmemory "github.com/aloks98/securevault/identity/memory"
	"github.com/aloks98/securevault/identity/mock"
	"github.com/aloks98/securevault/identity/remote"
	"github.com/aloks98/securevault/internal/wire"
	"github.com/aloks98/securevault/ratelimit"
	"github.com/aloks98/securevault/store/memory"
)

func newTestServer(t *testing.T, cfg *Config) (*Server, *idmemory.Directory) {
	t.Helper()
	dir := idmemory.NewSeeded()
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Directory = dir
	cfg.Identity = mock.New(dir, mock.WithLatency(mock.Latency{}))

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, dir
}

func do(t *testing.T, h http.Handler, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) wire.Error {
	t.Helper()
	var body wire.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
	if _, err := New(&Config{Identity: mock.New(idmemory.New())}); err == nil {
		t.Error("New() without directory should fail")
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := do(t, srv, http.MethodPost, "/v1/auth/login", "", wire.LoginRequest{Email: "admin@securetech.com", Password: "password"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var res wire.AuthResponse
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.User.Role != identity.RoleAdmin || res.Token != "mock-jwt-token-1" {
		t.Errorf("response = %+v", res)
	}
}

func TestAuthErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{
			"unknown email", "/v1/auth/login",
			wire.LoginRequest{Email: "nobody@x.com", Password: "password"},
			http.StatusUnauthorized, securevault.CodeInvalidCredentials,
		},
		{
			"existing email", "/v1/auth/signup",
			wire.SignupRequest{
				FirstName: "Al", LastName: "Ad", Email: "admin@securetech.com",
				Password: "Passw0rd!", ConfirmPassword: "Passw0rd!", Role: "admin", Organization: "Org",
			},
			http.StatusConflict, securevault.CodeEmailExists,
		},
		{
			"reset unknown", "/v1/auth/password-reset",
			wire.PasswordResetRequest{Email: "nobody@x.com"},
			http.StatusNotFound, securevault.CodeEmailNotFound,
		},
		{
			"invalid form", "/v1/auth/login",
			wire.LoginRequest{Email: "not-an-email", Password: "short"},
			http.StatusUnprocessableEntity, wire.CodeValidation,
		},
		{
			"unknown field", "/v1/auth/login",
			map[string]string{"email": "a@b.co", "password": "password", "remember": "yes"},
			http.StatusBadRequest, wire.CodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, tt.path, "", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantCode, w.Body)
			}
			if e := decodeError(t, w); e.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", e.Code, tt.wantErr)
			}
		})
	}
}

func TestValidationFields(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := do(t, srv, http.MethodPost, "/v1/auth/signup", "", wire.SignupRequest{
		FirstName: "A", LastName: "Bee", Email: "new@x.com",
		Password: "password", ConfirmPassword: "different", Role: "root", Organization: "Org",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	e := decodeError(t, w)
	for _, field := range []string{"firstName", "password", "confirmPassword", "role"} {
		if e.Fields[field] == "" {
			t.Errorf("missing message for %q in %v", field, e.Fields)
		}
	}
	if _, ok := e.Fields["lastName"]; ok {
		t.Errorf("valid field reported: %v", e.Fields)
	}
}

func TestSignupThenMe(t *testing.T) {
	srv, dir := newTestServer(t, nil)
	before := dir.Len()

	w := do(t, srv, http.MethodPost, "/v1/auth/signup", "", wire.SignupRequest{
		FirstName: "Ann", LastName: "Bee", Email: "new@x.com",
		Password: "Passw0rd!", ConfirmPassword: "Passw0rd!", Role: "client", Organization: "Org",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var res wire.AuthResponse
	_ = json.NewDecoder(w.Body).Decode(&res)
	if dir.Len() != before+1 {
		t.Errorf("directory length = %d, want %d", dir.Len(), before+1)
	}

	w = do(t, srv, http.MethodGet, "/v1/me", res.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me identity.User
	_ = json.NewDecoder(w.Body).Decode(&me)
	if me.Email != "new@x.com" || me.Role != identity.RoleClient {
		t.Errorf("me = %+v", me)
	}
}

func TestProtectedRoutes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		path string
		tok  string
		want int
		code string
	}{
		{"no token", "/v1/me", "", http.StatusUnauthorized, wire.CodeUnauthorized},
		{"bad token", "/v1/dashboard", "nope", http.StatusUnauthorized, wire.CodeUnauthorized},
		{"unknown subject", "/v1/me", "mock-jwt-token-42", http.StatusUnauthorized, wire.CodeUnauthorized},
		{"client admin users", "/v1/admin/users", "mock-jwt-token-2", http.StatusForbidden, wire.CodeForbidden},
		{"hacker admin users", "/v1/admin/users", "mock-jwt-token-3", http.StatusForbidden, wire.CodeForbidden},
		{"admin users", "/v1/admin/users", "mock-jwt-token-1", http.StatusOK, ""},
		{"unknown route", "/v1/nope", "", http.StatusNotFound, wire.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, tt.path, tt.tok, nil)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.code != "" {
				if e := decodeError(t, w); e.Code != tt.code {
					t.Errorf("code = %q, want %q", e.Code, tt.code)
				}
			}
		})
	}
}

func TestCookieToken(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "mock-jwt-token-2"})
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		tok   string
		title string
	}{
		{"mock-jwt-token-1", "Admin Control Center"},
		{"mock-jwt-token-2", "Client Dashboard"},
		{"mock-jwt-token-3", "Ethical Hacker Hub"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, "/v1/dashboard", tt.tok, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			var view dashboard.View
			if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if view.Title != tt.title {
				t.Errorf("Title = %q, want %q", view.Title, tt.title)
			}
		})
	}
}

func TestTasksQuery(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	all := dashboard.Tasks(identity.RoleClient)
	query := strings.ToUpper(all[0].Title[:4])
	want := dashboard.FilterTasks(all, query)

	w := do(t, srv, http.MethodGet, "/v1/tasks?q="+url.QueryEscape(query), "mock-jwt-token-2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res wire.TasksResponse
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Tasks) != len(want) || len(res.Tasks) == 0 {
		t.Errorf("tasks = %d, want %d", len(res.Tasks), len(want))
	}
	total := 0
	for _, n := range res.Counts {
		total += n
	}
	if total != len(res.Tasks) {
		t.Errorf("counts %v do not add up to %d", res.Counts, len(res.Tasks))
	}
}

func TestAdminUsers(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := do(t, srv, http.MethodGet, "/v1/admin/users", "mock-jwt-token-1", nil)
	var res wire.UsersResponse
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Total != 3 || len(res.Users) != 3 || res.Users[0].Email != "admin@securetech.com" {
		t.Errorf("users = %+v", res)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(2, time.Minute)
	defer limiter.Close()
	srv, _ := newTestServer(t, &Config{Limiter: limiter})

	body := wire.PasswordResetRequest{Email: "client@company.com"}
	for i := 0; i < 2; i++ {
		if w := do(t, srv, http.MethodPost, "/v1/auth/password-reset", "", body); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, w.Code)
		}
	}

	w := do(t, srv, http.MethodPost, "/v1/auth/password-reset", "", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if e := decodeError(t, w); e.Code != wire.CodeRateLimited {
		t.Errorf("code = %q", e.Code)
	}

	// only /v1/auth is limited
	if w := do(t, srv, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("healthz status = %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, &Config{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

type downService struct{ identity.Service }

func (downService) Ping(context.Context) error { return identity.ErrUnavailable }

func (downService) Login(context.Context, string, string) (*identity.Result, error) {
	return nil, identity.ErrUnavailable
}

func TestUnavailable(t *testing.T) {
	srv, err := New(&Config{Identity: downService{}, Directory: idmemory.NewSeeded()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if w := do(t, srv, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("healthz status = %d, want 503", w.Code)
	}
	w := do(t, srv, http.MethodPost, "/v1/auth/login", "", wire.LoginRequest{Email: "a@b.co", Password: "password"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("login status = %d, want 503", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{securevault.CodeInvalidCredentials, http.StatusUnauthorized},
		{securevault.CodeEmailExists, http.StatusConflict},
		{securevault.CodeEmailNotFound, http.StatusNotFound},
		{securevault.CodeUnknownRole, http.StatusUnprocessableEntity},
		{securevault.CodeValidation, http.StatusUnprocessableEntity},
		{securevault.CodeIdentityUnavailable, http.StatusServiceUnavailable},
		{securevault.CodeTimeout, http.StatusGatewayTimeout},
		{securevault.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

// The remote client and the server must agree on paths, bodies and error
// codes; a session over the remote client behaves like one over the mock.
func TestRemoteClientRoundTrip(t *testing.T) {
	srv, dir := newTestServer(t, nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client, err := remote.New(&remote.Config{BaseURL: ts.URL, InitialInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("remote.New() error = %v", err)
	}
	sess, err := securevault.New(securevault.WithStore(memory.New()), securevault.WithIdentity(client))
	if err != nil {
		t.Fatalf("securevault.New() error = %v", err)
	}
	defer sess.Close()
	ctx := context.Background()

	if err := sess.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if err := sess.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	u, err := sess.Login(ctx, "admin@securetech.com", "password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.Role != identity.RoleAdmin || sess.Token() != "mock-jwt-token-1" {
		t.Errorf("Login() = %+v, token %q", u, sess.Token())
	}

	if _, err := sess.Login(ctx, "nobody@x.com", "password"); !errors.Is(err, securevault.ErrInvalidCredentials) {
		t.Errorf("Login(unknown) error = %v", err)
	}
	if _, err := sess.Signup(ctx, identity.SignupRequest{
		Email: "admin@securetech.com", Password: "Passw0rd!", FirstName: "Al", LastName: "Ad",
		Role: identity.RoleAdmin, Organization: "Org",
	}); securevault.ErrorCode(err) != securevault.CodeEmailExists {
		t.Errorf("Signup(existing) error = %v", err)
	}

	before := dir.Len()
	nu, err := sess.Signup(ctx, identity.SignupRequest{
		Email: "new@x.com", Password: "Passw0rd!", FirstName: "Ann", LastName: "Bee",
		Role: identity.RoleClient, Organization: "Org",
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if nu.Role != identity.RoleClient || dir.Len() != before+1 {
		t.Errorf("Signup() = %+v, directory %d", nu, dir.Len())
	}

	msg, err := sess.ResetPassword(ctx, "client@company.com")
	if err != nil || msg != identity.MessagePasswordReset {
		t.Errorf("ResetPassword() = %q, %v", msg, err)
	}
	if _, err := sess.RecoverAccount(ctx, "nobody@x.com", "Fluffy"); securevault.ErrorCode(err) != securevault.CodeEmailNotFound {
		t.Errorf("RecoverAccount(unknown) error = %v", err)
	}
}
