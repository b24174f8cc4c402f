package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"Regatta/internal/auth"
	"Regatta/internal/core/session"
)

// TokenVerifier checks a bearer access token. *auth.Verifier implements it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware authenticates requests with access tokens from the managed auth service
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth ensures the request carries a valid bearer token.
// Returns 401 otherwise; on success the session is stored in the request context.
// A session already loaded by an outer OptionalAuth is reused.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "Missing Authorization header")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			writeAuthError(w, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		sess, err := m.authenticate(r.Context(), token)
		if err != nil {
			log.Printf("[AUTH_FAILURE] type=verification_failed ip=%s method=%s path=%s error=%v",
				r.RemoteAddr, r.Method, r.URL.Path, err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

// OptionalAuth loads the session when a valid token is present, but doesn't require it.
// Public reads use it to fill in viewer state such as isMember and voted.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.authenticate(r.Context(), token)
		if err != nil {
			// Invalid token - continue as anonymous
			log.Printf("Optional auth failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

func (m *AuthMiddleware) authenticate(ctx context.Context, token string) (*session.Session, error) {
	claims, err := m.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, auth.ErrInvalidToken
	}

	sess := &session.Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		Role:        claims.Role,
		AccessToken: token,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// GetUserID returns the authenticated user's id, or "" for anonymous requests
func GetUserID(r *http.Request) string {
	return session.UserID(r.Context())
}

// GetSession returns the request's session, or nil for anonymous requests
func GetSession(r *http.Request) *session.Session {
	return session.FromContext(r.Context())
}

// SetTestUserID stores a session for userID in ctx.
// This function should ONLY be used in tests to mock authenticated users.
func SetTestUserID(ctx context.Context, userID string) context.Context {
	return session.NewContext(ctx, &session.Session{
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	response := `{"error":"AuthenticationRequired","message":"` + message + `"}`
	if _, err := w.Write([]byte(response)); err != nil {
		log.Printf("Failed to write auth error response: %v", err)
	}
}
