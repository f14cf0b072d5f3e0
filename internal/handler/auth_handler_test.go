package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/nutricoach/internal/auth"
	"github.com/hitoshi/nutricoach/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signUpFn         func(ctx context.Context, in auth.SignUpInput, client auth.ClientInfo) (*auth.Result, error)
	signInFn         func(ctx context.Context, in auth.SignInInput, client auth.ClientInfo) (*auth.Result, error)
	googleEnabled    bool
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string, client auth.ClientInfo) (*auth.Result, error)
	signOutFn        func(ctx context.Context, sessionID string) error
	currentSessionFn func(ctx context.Context, sessionID string) (*model.Session, *model.User, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, in auth.SignUpInput, client auth.ClientInfo) (*auth.Result, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, in, client)
	}
	return nil, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, in auth.SignInInput, client auth.ClientInfo) (*auth.Result, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, in, client)
	}
	return nil, nil
}

func (m *mockAuthService) GoogleEnabled() bool {
	return m.googleEnabled
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string, client auth.ClientInfo) (*auth.Result, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code, client)
	}
	return nil, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, sessionID string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) CurrentSession(ctx context.Context, sessionID string) (*model.Session, *model.User, error) {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(ctx, sessionID)
	}
	return nil, nil, nil
}

func sampleUser() *model.User {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return &model.User{ID: "user-1", Name: "Sarah", Email: "sarah@example.com", CreatedAt: now, UpdatedAt: now}
}

func sampleResult() *auth.Result {
	return &auth.Result{
		Token:   "jwt-token",
		Session: &model.Session{ID: "sess-1", UserID: "user-1", ExpiresAt: time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)},
		User:    sampleUser(),
	}
}

var testAuthConfig = AuthHandlerConfig{BaseURL: "http://localhost:3000"}

// --- POST /api/auth/sign-up ---

func TestAuthHandler_SignUp_Success_Returns201(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput, client auth.ClientInfo) (*auth.Result, error) {
			if in.Email != "sarah@example.com" || in.Password != "password123" || in.Name != "Sarah" {
				t.Errorf("SignUpInput = %+v", in)
			}
			if client.IPAddress != "192.0.2.1" || client.UserAgent != "test-agent" {
				t.Errorf("ClientInfo = %+v", client)
			}
			return sampleResult(), nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := newJSONRequest(http.MethodPost, "/api/auth/sign-up", `{"name":"Sarah","email":"sarah@example.com","password":"password123"}`)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	h.SignUp(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body=%s)", w.Code, http.StatusCreated, w.Body.String())
	}
	got := decodeJSONBody(t, w)
	if got["token"] != "jwt-token" {
		t.Errorf("token = %v", got["token"])
	}
	if got["expiresAt"] != "2024-01-22T09:00:00Z" {
		t.Errorf("expiresAt = %v", got["expiresAt"])
	}
	user, _ := got["user"].(map[string]any)
	if user["email"] != "sarah@example.com" {
		t.Errorf("user = %v", got["user"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("response must not contain passwordHash")
	}
}

func TestAuthHandler_SignUp_EmailTaken_Returns409(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput, client auth.ClientInfo) (*auth.Result, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := newJSONRequest(http.MethodPost, "/api/auth/sign-up", `{"name":"Sarah","email":"sarah@example.com","password":"password123"}`)
	w := httptest.NewRecorder()
	h.SignUp(w, req)

	assertErrorResponse(t, w, http.StatusConflict, model.ErrCodeEmailTaken)
}

func TestAuthHandler_SignUp_InvalidJSON_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	req := newJSONRequest(http.MethodPost, "/api/auth/sign-up", `{"email":123}`)
	w := httptest.NewRecorder()
	h.SignUp(w, req)

	assertErrorResponse(t, w, http.StatusBadRequest, model.ErrCodeInvalidJSON)
}

// --- POST /api/auth/sign-in ---

func TestAuthHandler_SignIn_Success_Returns200(t *testing.T) {
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, in auth.SignInInput, client auth.ClientInfo) (*auth.Result, error) {
			return sampleResult(), nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := newJSONRequest(http.MethodPost, "/api/auth/sign-in", `{"email":"sarah@example.com","password":"password123"}`)
	w := httptest.NewRecorder()
	h.SignIn(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthHandler_SignIn_InvalidCredentials_Returns401(t *testing.T) {
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, in auth.SignInInput, client auth.ClientInfo) (*auth.Result, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := newJSONRequest(http.MethodPost, "/api/auth/sign-in", `{"email":"sarah@example.com","password":"wrong"}`)
	w := httptest.NewRecorder()
	h.SignIn(w, req)

	assertErrorResponse(t, w, http.StatusUnauthorized, model.ErrCodeInvalidCredentials)
}

// --- POST /api/auth/sign-out ---

func TestAuthHandler_SignOut_Success_Returns204(t *testing.T) {
	var revoked string
	svc := &mockAuthService{
		signOutFn: func(ctx context.Context, sessionID string) error {
			revoked = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil), "user-1", "sess-1")
	w := httptest.NewRecorder()
	h.SignOut(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if revoked != "sess-1" {
		t.Errorf("revoked session = %q, want sess-1", revoked)
	}
}

func TestAuthHandler_SignOut_NoSession_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	w := httptest.NewRecorder()
	h.SignOut(w, req)

	assertErrorResponse(t, w, http.StatusUnauthorized, model.ErrCodeAuthenticationRequired)
}

// --- GET /api/auth/session ---

func TestAuthHandler_Session_ReturnsUserAndSession(t *testing.T) {
	res := sampleResult()
	svc := &mockAuthService{
		currentSessionFn: func(ctx context.Context, sessionID string) (*model.Session, *model.User, error) {
			return res.Session, res.User, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), "user-1", "sess-1")
	w := httptest.NewRecorder()
	h.Session(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	got := decodeJSONBody(t, w)
	session, _ := got["session"].(map[string]any)
	if session["id"] != "sess-1" {
		t.Errorf("session = %v", got["session"])
	}
}

// --- Google OAuth ---

func TestAuthHandler_GoogleLogin_SetsStateCookieAndRedirects(t *testing.T) {
	var gotState string
	svc := &mockAuthService{
		getLoginURLFn: func(state string) string {
			gotState = state
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{BaseURL: "https://app.example.com", CookieSecure: true})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil)
	w := httptest.NewRecorder()
	h.GoogleLogin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	if !strings.Contains(resp.Header.Get("Location"), "accounts.google.com") {
		t.Errorf("Location = %q", resp.Header.Get("Location"))
	}

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c
		}
	}
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie")
	}
	if stateCookie.Value != gotState || len(gotState) != 32 {
		t.Errorf("state cookie = %q, login state = %q", stateCookie.Value, gotState)
	}
	if !stateCookie.HttpOnly || !stateCookie.Secure {
		t.Error("state cookie should be HttpOnly and Secure")
	}
}

func TestAuthHandler_GoogleCallback_Success_RedirectsWithTokenFragment(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string, client auth.ClientInfo) (*auth.Result, error) {
			if code != "test-code" {
				t.Errorf("code = %q", code)
			}
			res := sampleResult()
			res.Token = "a.b+c"
			return res, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{BaseURL: "http://localhost:3000/"})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=test-code&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "test-state"})
	w := httptest.NewRecorder()
	h.GoogleCallback(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}
	want := "http://localhost:3000/auth/callback#token=" + url.QueryEscape("a.b+c")
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}

	for _, c := range resp.Cookies() {
		if c.Name == oauthStateCookie && c.MaxAge != -1 {
			t.Errorf("state cookie MaxAge = %d, want -1", c.MaxAge)
		}
	}
}

func TestAuthHandler_GoogleCallback_StateErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		cookie   string
		wantCode string
	}{
		{"state不一致", "/api/auth/google/callback?code=c&state=wrong", "correct", ErrCodeInvalidOAuthState},
		{"Cookieなし", "/api/auth/google/callback?code=c&state=s", "", ErrCodeInvalidOAuthState},
		{"stateが空", "/api/auth/google/callback?code=c", "", ErrCodeInvalidOAuthState},
		{"code欠落", "/api/auth/google/callback?state=s", "s", ErrCodeMissingCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				handleCallbackFn: func(ctx context.Context, code string, client auth.ClientInfo) (*auth.Result, error) {
					t.Error("HandleCallback should not be called")
					return nil, nil
				},
			}
			h := NewAuthHandler(svc, testAuthConfig)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			h.GoogleCallback(w, req)

			assertErrorResponse(t, w, http.StatusBadRequest, tt.wantCode)
		})
	}
}

func TestAuthHandler_GoogleCallback_ServiceError_Returns500(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string, client auth.ClientInfo) (*auth.Result, error) {
			return nil, errors.New("exchange failed")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=bad&state=s", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s"})
	w := httptest.NewRecorder()
	h.GoogleCallback(w, req)

	assertErrorResponse(t, w, http.StatusInternalServerError, model.ErrCodeInternal)
}
