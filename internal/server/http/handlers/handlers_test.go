package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	pkgAuth "github.com/polkiloo/returnearn/internal/pkg/auth"
	"github.com/polkiloo/returnearn/internal/server/http/dto"
	"github.com/polkiloo/returnearn/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/returnearn/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func performRequest(t *testing.T, method, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	route, _, _ := strings.Cut(path, "?")
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asUser(login string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsContextKey, pkgAuth.Claims{ID: "s-" + login, Subject: login, Role: model.RoleUser})
	}
}

func asAdmin(login string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsContextKey, pkgAuth.Claims{ID: "s-" + login, Subject: login, Role: model.RoleAdmin})
	}
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected error body, got %q: %v", resp.Body.String(), err)
	}
	return body.Error
}

func findCookie(t *testing.T, resp *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	result := resp.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	for _, cookie := range result.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestCurrentUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUser(c); got != "" {
		t.Fatalf("expected empty login when not set, got %q", got)
	}

	asUser("alice")(c)
	if got := CurrentUser(c); got != "alice" {
		t.Fatalf("expected alice, got %q", got)
	}
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		hasBody bool
	}{
		{fmt.Errorf("%w: login is required", domainErrors.ErrInvalidInput), http.StatusBadRequest, true},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized, false},
		{domainErrors.ErrAlreadyExists, http.StatusConflict, true},
		{fmt.Errorf("%w: stale", domainErrors.ErrVersionConflict), http.StatusConflict, true},
		{fmt.Errorf("%w: unknown condition", domainErrors.ErrScoring), http.StatusUnprocessableEntity, true},
		{fmt.Errorf("append: %w: disk full", domainErrors.ErrStorage), http.StatusInternalServerError, false},
		{errors.New("boom"), http.StatusInternalServerError, false},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			resp := performRequest(t, http.MethodGet, "/", func(c *gin.Context) { writeError(c, tc.err) }, nil, nil, nil)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			if tc.hasBody && decodeError(t, resp) != tc.err.Error() {
				t.Fatalf("expected message %q, got %q", tc.err.Error(), resp.Body.String())
			}
			if !tc.hasBody && resp.Body.Len() != 0 {
				t.Fatalf("expected empty body, got %q", resp.Body.String())
			}
		})
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/register", NewAuthHandler(testhelpers.AuthFacadeStub{}).Register, nil, body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if resp.Header().Get("Authorization") == "" {
		t.Fatalf("expected auth header to be set")
	}
}

func TestAuthHandlerRegisterPassesCredentials(t *testing.T) {
	login := testhelpers.RandomLogin()
	password := testhelpers.RandomPassword(16, 32)
	body, _ := json.Marshal(dto.AuthRequest{Login: login, Password: password})
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(ctx context.Context, gotLogin, gotPassword string) (string, error) {
		if gotLogin != login || gotPassword != password {
			t.Fatalf("unexpected credentials passed to facade: %q %q", gotLogin, gotPassword)
		}
		return "session-token", nil
	}})
	resp := performRequest(t, http.MethodPost, "/register", handler.Register, nil, body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer session-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	cookie := findCookie(t, resp, middleware.UserCookieName)
	if cookie == nil || cookie.Value != "session-token" {
		t.Fatalf("expected user session cookie, got %+v", cookie)
	}
}

func TestAuthHandlerRegisterFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid input", body: []byte(`{"login":"","password":""}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("%w: login is required", domainErrors.ErrInvalidInput)
		}}, status: http.StatusBadRequest},
		{name: "already exists", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrAlreadyExists
		}}, status: http.StatusConflict},
		{name: "internal", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/register", NewAuthHandler(tt.facade).Register, nil, tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
			if cookie := findCookie(t, resp, middleware.UserCookieName); cookie != nil {
				t.Fatalf("expected no session cookie on failure, got %+v", cookie)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(testhelpers.AuthFacadeStub{}).Login, nil, body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "missing fields", body: []byte(`{}`), facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("%w: login and password are required", domainErrors.ErrInvalidInput)
		}}, status: http.StatusBadRequest},
		{name: "invalid", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusUnauthorized},
		{name: "internal", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(tt.facade).Login, nil, tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLogout(t *testing.T) {
	var revoked pkgAuth.Claims
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{LogoutFn: func(c pkgAuth.Claims) { revoked = c }})

	resp := performRequest(t, http.MethodPost, "/logout", handler.Logout, asAdmin("root"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if revoked.Subject != "root" || revoked.ID != "s-root" {
		t.Fatalf("expected session to be revoked, got %+v", revoked)
	}
	cookie := findCookie(t, resp, middleware.AdminCookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected admin cookie to be cleared, got %+v", cookie)
	}

	resp = performRequest(t, http.MethodPost, "/logout", handler.Logout, nil, nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.Code)
	}
}
