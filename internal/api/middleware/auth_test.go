package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Regatta/internal/auth"
)

const (
	testIssuer = "https://abc.supabase.co/auth/v1"
	testUserID = "5f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f"
)

var testSecret = []byte("super-secret-jwt-token-with-at-least-32-characters")

func newTestMiddleware() *AuthMiddleware {
	return NewAuthMiddleware(auth.NewVerifier(auth.VerifierConfig{Issuer: testIssuer, HS256Secret: testSecret}, nil))
}

// createTestToken signs an HS256 access token for subject
func createTestToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
		Email: "skipper@example.com",
		Role:  "authenticated",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func TestRequireAuth_ValidTokenStoresSession(t *testing.T) {
	token := createTestToken(t, testUserID, time.Hour)

	handlerCalled := false
	handler := newTestMiddleware().RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		sess := GetSession(r)
		require.NotNil(t, sess)
		assert.Equal(t, testUserID, sess.UserID)
		assert.Equal(t, "skipper@example.com", sess.Email)
		assert.Equal(t, token, sess.AccessToken)
		assert.True(t, sess.ExpiresAt.After(time.Now()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + createTestToken(t, testUserID, -time.Hour)},
		{"missing subject", "Bearer " + createTestToken(t, "", time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestMiddleware().RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "AuthenticationRequired")
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	m := newTestMiddleware()

	run := func(header string) string {
		var userID string
		handler := m.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID = GetUserID(r)
			w.WriteHeader(http.StatusOK)
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/communities", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return userID
	}

	assert.Equal(t, testUserID, run("Bearer "+createTestToken(t, testUserID, time.Hour)))
	assert.Empty(t, run(""), "anonymous request")
	assert.Empty(t, run("Bearer garbage"), "invalid token continues anonymously")
}

func TestGetUserID_NotAuthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserID(req))
	assert.Nil(t, GetSession(req))
}
