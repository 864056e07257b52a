package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"civicaid.org/internal/auth"
)

func newAuthedAPI(t *testing.T) (*API, *auth.Issuer) {
	t.Helper()
	tokens, err := auth.NewIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return New(Config{Tokens: tokens}), tokens
}

func TestRequireAuthRejectsBadHeaders(t *testing.T) {
	api, _ := newAuthedAPI(t)
	handler := api.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler must not run")
	}))

	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic dXNlcjpwYXNz",
		"empty token":  "Bearer   ",
		"garbage":      "Bearer not-a-real-token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
			if header != "" {
				req.Header.Set(authHeader, header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatalf("expected WWW-Authenticate challenge")
			}
		})
	}
}

func TestRequireAuthPassesClaims(t *testing.T) {
	api, tokens := newAuthedAPI(t)
	token, _, err := tokens.AccessToken(&auth.User{ID: "u1", Role: auth.RoleNGO, IsActive: true})
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	var seen *auth.Claims
	handler := api.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set(authHeader, bearerPrefix+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.Subject != "u1" || seen.Role != auth.RoleNGO {
		t.Fatalf("claims not propagated: %+v", seen)
	}
}

func TestRequireRole(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	withClaims := func(role auth.Role) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
		claims := &auth.Claims{Role: role}
		return req.WithContext(auth.ContextWithClaims(req.Context(), claims))
	}

	t.Run("matching role passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRole(auth.RoleAdmin)(okHandler).ServeHTTP(rec, withClaims(auth.RoleAdmin))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("other role forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRole(auth.RoleAdmin)(okHandler).ServeHTTP(rec, withClaims(auth.RoleCitizen))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if got := rec.Header().Get("WWW-Authenticate"); got != `Bearer error="insufficient_scope"` {
			t.Fatalf("unexpected challenge: %q", got)
		}
	})

	t.Run("missing claims unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
		RequireRole(auth.RoleAdmin)(okHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("empty set checks authentication only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireRole()(okHandler).ServeHTTP(rec, withClaims(auth.RoleCitizen))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer abc", "abc", false},
		{"  Bearer abc  ", "abc", false},
		{"", "", true},
		{"Bearer ", "", true},
		{"Basic abc", "", true},
		{"abc", "", true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Errorf("extractBearerToken(%q): expected error", tc.header)
			}
			continue
		}
		if err != nil {
			t.Errorf("extractBearerToken(%q): %v", tc.header, err)
			continue
		}
		if got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
