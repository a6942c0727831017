package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-tracker/internal/api/middleware"
	"github.com/99minutos/task-tracker/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (*domain.Session, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.Session, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.Session, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.loginFn(ctx, email, password)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, name, email, password string) (*domain.Session, error) {
			if name != "Ann" || email != "ann@x.com" || password != "secret1" {
				t.Fatalf("unexpected args: %q %q %q", name, email, password)
			}
			return &domain.Session{
				Identity: domain.Identity{ID: "u1", Name: name, Email: email},
				Token:    "tok",
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/api/users/register",
		`{"name":" Ann ","email":" ann@x.com ","password":"secret1"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp["_id"] != "u1" || resp["name"] != "Ann" || resp["email"] != "ann@x.com" || resp["token"] != "tok" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, ok := resp["password"]; ok {
		t.Fatalf("password must never be echoed back")
	}
}

func TestAuthHandler_Register_PropagatesDuplicate(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.Session, error) {
			return nil, domain.ErrAccountExists
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/api/users/register",
		`{"name":"Ann","email":"ann@x.com","password":"secret1"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"ann@x.com","password":"secret1"}`},
		{"blank name", `{"name":"   ","email":"ann@x.com","password":"secret1"}`},
		{"bad email", `{"name":"Ann","email":"nope","password":"secret1"}`},
		{"short password", `{"name":"Ann","email":"ann@x.com","password":"123"}`},
		{"missing password", `{"name":"Ann","email":"ann@x.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			h := NewAuthHandler(&stubAuthService{
				registerFn: func(context.Context, string, string, string) (*domain.Session, error) {
					t.Fatalf("service must not be called")
					return nil, nil
				},
			})

			c, _ := jsonContext(e, http.MethodPost, "/api/users/register", tt.body)
			err := h.Register(c)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/api/users/register", "not-json")
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*domain.Session, error) {
			if email != "ann@x.com" || password != "secret1" {
				t.Fatalf("unexpected args: %q %q", email, password)
			}
			return &domain.Session{Identity: domain.Identity{ID: "u1", Name: "Ann", Email: email}, Token: "tok"}, nil
		},
	})

	c, rec := jsonContext(e, http.MethodPost, "/api/users/login", `{"email":"ann@x.com","password":"secret1"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["token"] != "tok" || resp["_id"] != "u1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	})

	c, _ := jsonContext(e, http.MethodPost, "/api/users/login", `{"email":"ann@x.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodPost, "/api/users/login", `{"email":"ann@x.com"}`)
	var ve *domain.ValidationError
	if err := h.Login(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, rec := jsonContext(e, http.MethodGet, "/api/users/me", "")
	c.Set(middleware.IdentityKey, domain.Identity{ID: "u1", Name: "Ann", Email: "ann@x.com"})
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decode(t, rec); resp["_id"] != "u1" || resp["email"] != "ann@x.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Me_WithoutIdentity(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonContext(e, http.MethodGet, "/api/users/me", "")
	var he *echo.HTTPError
	if err := h.Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
