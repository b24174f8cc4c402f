package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Supported signing algorithms
const (
	AlgorithmHS256 = "HS256"
	AlgorithmES256 = "ES256"
	AlgorithmRS256 = "RS256"
)

// ErrInvalidToken is returned for any token that fails parsing or verification
var ErrInvalidToken = errors.New("invalid token")

// Claims are the access-token claims issued by the managed auth service
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// KeyFetcher resolves the public key for an asymmetric token's key ID
type KeyFetcher interface {
	FetchPublicKey(ctx context.Context, kid string) (interface{}, error)
}

// VerifierConfig configures token verification
type VerifierConfig struct {
	Issuer   string
	Audience string
	// HS256Secret enables legacy shared-secret tokens. Leave empty to accept only asymmetric tokens.
	HS256Secret []byte
	Now         func() time.Time
}

// Verifier checks access tokens against the auth service's keys
type Verifier struct {
	keys   KeyFetcher
	config VerifierConfig
}

// NewVerifier creates a token verifier. keys may be nil when only HS256 is used.
func NewVerifier(config VerifierConfig, keys KeyFetcher) *Verifier {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Audience == "" {
		config.Audience = "authenticated"
	}
	return &Verifier{keys: keys, config: config}
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ"`
}

func stripBearerPrefix(tokenString string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
}

// parseHeader decodes the JOSE header without verifying anything
func parseHeader(tokenString string) (*tokenHeader, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidToken, len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header encoding", ErrInvalidToken)
	}
	var header tokenHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("%w: header json", ErrInvalidToken)
	}
	return &header, nil
}

// Verify checks the signature and claims of an access token.
//
// The algorithm comes from the header but each path pins the accepted methods,
// so an HS256 token can never be checked against a public key and vice versa.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = stripBearerPrefix(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	header, err := parseHeader(tokenString)
	if err != nil {
		return nil, err
	}

	var claims *Claims
	switch header.Alg {
	case AlgorithmHS256:
		claims, err = v.verifyHS256(tokenString)
	case AlgorithmES256, AlgorithmRS256:
		claims, err = v.verifyAsymmetric(ctx, tokenString, header)
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidToken, header.Alg)
	}
	if err != nil {
		return nil, err
	}

	if err := v.validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) parserOptions(methods ...string) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithTimeFunc(v.config.Now),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	return opts
}

func (v *Verifier) verifyHS256(tokenString string) (*Claims, error) {
	if len(v.config.HS256Secret) == 0 {
		return nil, fmt.Errorf("%w: HS256 tokens are not accepted", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.config.HS256Secret, nil
	}, v.parserOptions(AlgorithmHS256)...)
	if err != nil {
		return nil, fmt.Errorf("%w: HS256 verification failed: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: HS256 verification failed", ErrInvalidToken)
	}
	return claims, nil
}

func (v *Verifier) verifyAsymmetric(ctx context.Context, tokenString string, header *tokenHeader) (*Claims, error) {
	if v.keys == nil {
		return nil, fmt.Errorf("%w: no key source for %s tokens", ErrInvalidToken, header.Alg)
	}
	if header.Kid == "" {
		return nil, fmt.Errorf("%w: asymmetric token missing kid", ErrInvalidToken)
	}

	publicKey, err := v.keys.FetchPublicKey(ctx, header.Kid)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch public key: %v", ErrInvalidToken, err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return publicKey, nil
	}, v.parserOptions(AlgorithmES256, AlgorithmRS256)...)
	if err != nil {
		return nil, fmt.Errorf("%w: asymmetric verification failed: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: asymmetric verification failed", ErrInvalidToken)
	}
	return claims, nil
}

// validateClaims checks the claims jwt/v5 leaves to the caller
func (v *Verifier) validateClaims(claims *Claims) error {
	if claims.Subject == "" {
		return fmt.Errorf("%w: missing 'sub' claim", ErrInvalidToken)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return fmt.Errorf("%w: 'sub' is not a user id: %s", ErrInvalidToken, claims.Subject)
	}

	audienceOK := false
	for _, aud := range claims.Audience {
		if aud == v.config.Audience {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		return fmt.Errorf("%w: audience does not include %q", ErrInvalidToken, v.config.Audience)
	}

	return nil
}
