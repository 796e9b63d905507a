package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/possuite/backoffice/internal/core/domain"
)

type stubAuthenticator struct {
	principals map[string]*domain.Principal
	calls      int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.Principal, error) {
	s.calls++
	p, ok := s.principals[token]
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

func newAuthContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	owner := &domain.Principal{ID: "owner_1", Kind: domain.PrincipalOwner}
	authn := &stubAuthenticator{principals: map[string]*domain.Principal{"good": owner}}
	c, rec := newAuthContext("Bearer good")

	called := false
	handler := Auth(authn)(func(c echo.Context) error {
		called = true
		if Principal(c) != owner {
			t.Fatalf("principal not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token good",
		"empty token":    "Bearer  ",
		"unknown token":  "Bearer nope",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			authn := &stubAuthenticator{principals: map[string]*domain.Principal{"good": {ID: "o"}}}
			c, _ := newAuthContext(header)

			err := Auth(authn)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})(c)

			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestAuthMiddleware_SchemeCaseInsensitive(t *testing.T) {
	authn := &stubAuthenticator{principals: map[string]*domain.Principal{"good": {ID: "o", Kind: domain.PrincipalOwner}}}
	c, _ := newAuthContext("bearer good")

	if err := Auth(authn)(func(c echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("expected lowercase scheme accepted, got %v", err)
	}
}

func TestPrincipal_AbsentIsNil(t *testing.T) {
	c, _ := newAuthContext("")
	if Principal(c) != nil {
		t.Fatal("expected nil principal")
	}
}
