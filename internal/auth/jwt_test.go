package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer = "https://abc.supabase.co/auth/v1"
	testUserID = "5f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f"
)

var testSecret = []byte("super-secret-jwt-token-with-at-least-32-characters")

type staticKeyFetcher struct {
	keys map[string]interface{}
}

func (f *staticKeyFetcher) FetchPublicKey(ctx context.Context, kid string) (interface{}, error) {
	key, ok := f.keys[kid]
	if !ok {
		return nil, errors.New("unknown kid")
	}
	return key, nil
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   testUserID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "skipper@example.com",
		Role:  "authenticated",
	}
}

func signHS256(t *testing.T, claims Claims, secret []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func signES256(t *testing.T, claims Claims, key *ecdsa.PrivateKey, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerify_HS256(t *testing.T) {
	v := NewVerifier(VerifierConfig{Issuer: testIssuer, HS256Secret: testSecret}, nil)

	claims, err := v.Verify(context.Background(), "Bearer "+signHS256(t, validClaims(), testSecret))
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.Subject)
	assert.Equal(t, "skipper@example.com", claims.Email)
}

func TestVerify_HS256Rejections(t *testing.T) {
	v := NewVerifier(VerifierConfig{Issuer: testIssuer, HS256Secret: testSecret}, nil)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://evil.example.com/auth/v1"

	badSubject := validClaims()
	badSubject.Subject = "did:plc:notauuid"

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signHS256(t, validClaims(), []byte("another-secret-another-secret-another"))},
		{"expired", signHS256(t, expired, testSecret)},
		{"wrong issuer", signHS256(t, wrongIssuer, testSecret)},
		{"subject not a uuid", signHS256(t, badSubject, testSecret)},
		{"wrong audience", signHS256(t, wrongAudience, testSecret)},
		{"missing expiry", signHS256(t, noExpiry, testSecret)},
		{"garbage", "not.a.jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_HS256DisabledWithoutSecret(t *testing.T) {
	v := NewVerifier(VerifierConfig{Issuer: testIssuer}, &staticKeyFetcher{})

	_, err := v.Verify(context.Background(), signHS256(t, validClaims(), testSecret))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HS256 tokens are not accepted")
}

func TestVerify_ES256(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	fetcher := &staticKeyFetcher{keys: map[string]interface{}{"key-1": &key.PublicKey}}
	v := NewVerifier(VerifierConfig{Issuer: testIssuer}, fetcher)

	claims, err := v.Verify(context.Background(), signES256(t, validClaims(), key, "key-1"))
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.Subject)

	_, err = v.Verify(context.Background(), signES256(t, validClaims(), key, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing kid")

	_, err = v.Verify(context.Background(), signES256(t, validClaims(), key, "unknown"))
	require.Error(t, err)
}

func TestVerify_ES256WrongKey(t *testing.T) {
	signer, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	fetcher := &staticKeyFetcher{keys: map[string]interface{}{"key-1": &other.PublicKey}}
	v := NewVerifier(VerifierConfig{Issuer: testIssuer}, fetcher)

	_, err = v.Verify(context.Background(), signES256(t, validClaims(), signer, "key-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWKSFetcher_FetchPublicKey(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pub, err := jwk.FromRaw(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, "rotating-key"))
	require.NoError(t, pub.Set(jwk.AlgorithmKey, "ES256"))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, err := NewJWKSFetcher(ctx, server.URL, "anon-key", time.Minute)
	require.NoError(t, err)

	raw, err := fetcher.FetchPublicKey(ctx, "rotating-key")
	require.NoError(t, err)
	ecKey, ok := raw.(*ecdsa.PublicKey)
	require.True(t, ok, "expected *ecdsa.PublicKey, got %T", raw)
	assert.True(t, ecKey.Equal(&key.PublicKey))

	_, err = fetcher.FetchPublicKey(ctx, "missing")
	require.Error(t, err)

	v := NewVerifier(VerifierConfig{Issuer: testIssuer}, fetcher)
	claims, err := v.Verify(ctx, signES256(t, validClaims(), key, "rotating-key"))
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.Subject)
}

func TestJWKSFetcher_UnknownKidRefreshIsThrottled(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pub, err := jwk.FromRaw(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, "known"))
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, err := NewJWKSFetcher(ctx, server.URL, "", time.Minute)
	require.NoError(t, err)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	fetcher.now = func() time.Time { return now }

	_, err = fetcher.FetchPublicKey(ctx, "known")
	require.NoError(t, err)
	base := hits.Load()

	// The first unknown kid refreshes once
	_, err = fetcher.FetchPublicKey(ctx, "forged-1")
	require.Error(t, err)
	assert.Equal(t, base+1, hits.Load())

	// Further unknown kids inside the window do not hit the endpoint
	for i := 0; i < 5; i++ {
		_, err = fetcher.FetchPublicKey(ctx, fmt.Sprintf("forged-%d", i+2))
		require.Error(t, err)
	}
	assert.Equal(t, base+1, hits.Load())

	// After the window another forced refresh is allowed
	now = now.Add(time.Minute)
	_, err = fetcher.FetchPublicKey(ctx, "forged-late")
	require.Error(t, err)
	assert.Equal(t, base+2, hits.Load())
}
