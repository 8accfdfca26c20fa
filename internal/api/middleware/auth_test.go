package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenwave/greenwave/internal/api/middleware"
	"github.com/greenwave/greenwave/internal/auth"
)

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.greenwave.example",
		Audience:   "greenwave-api",
	})
}

func tokenFor(t *testing.T, role auth.Role) string {
	t.Helper()
	operator := &auth.Operator{ID: "op_test", Name: "Test Operator", Role: role}
	token, _, err := newJWTService().GenerateAccessToken(operator)
	require.NoError(t, err)
	return token
}

func TestAuth_ValidToken(t *testing.T) {
	var gotID string
	var gotRole auth.Role

	handler := middleware.Auth(newJWTService())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = middleware.GetOperatorID(r.Context())
		gotRole = middleware.GetOperatorRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, auth.RoleDispatcher))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op_test", gotID)
	assert.Equal(t, auth.RoleDispatcher, gotRole)
}

func TestAuth_MissingHeader(t *testing.T) {
	handler := middleware.Auth(newJWTService())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuth_MalformedHeader(t *testing.T) {
	handler := middleware.Auth(newJWTService())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	handler := middleware.Auth(newJWTService())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid access token")
}

func TestAuth_WrongSigningKey(t *testing.T) {
	other := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "a-different-signing-key",
		Issuer:     "https://api.greenwave.example",
		Audience:   "greenwave-api",
	})
	operator := &auth.Operator{ID: "op_test", Name: "Test Operator", Role: auth.RoleAdmin}
	token, _, err := other.GenerateAccessToken(operator)
	require.NoError(t, err)

	handler := middleware.Auth(newJWTService())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	jwtService := newJWTService()
	chain := middleware.Auth(jwtService)(
		middleware.RequireRole(auth.RoleTrafficControl, auth.RoleAdmin)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, auth.RoleAdmin))
	rec := httptest.NewRecorder()

	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_Denied(t *testing.T) {
	jwtService := newJWTService()
	chain := middleware.Auth(jwtService)(
		middleware.RequireRole(auth.RoleAdmin)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, auth.RoleDispatcher))
	rec := httptest.NewRecorder()

	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "not permitted")
}

func TestGetOperatorID_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	assert.Empty(t, middleware.GetOperatorID(req.Context()))
	assert.Empty(t, middleware.GetOperatorRole(req.Context()))
}
