package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

const jwksFetchTimeout = 10 * time.Second

// JWKSFetcher resolves signing keys from the auth service's JWKS endpoint.
// Keys are cached and refreshed in the background. An unknown kid forces a
// refresh so key rotation is picked up early, but at most once per minRefresh:
// tokens with made-up kids cannot turn into a fetch per request.
type JWKSFetcher struct {
	cache      *jwk.Cache
	url        string
	minRefresh time.Duration
	now        func() time.Time

	mu         sync.Mutex
	lastForced time.Time
}

// apiKeyTransport adds the project's anon key, which the auth gateway expects
// on every request including the JWKS endpoint
type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("apikey", t.apiKey)
	return t.base.RoundTrip(req)
}

// NewJWKSFetcher registers jwksURL with a background-refreshing key cache.
// ctx bounds the lifetime of the refresh goroutine. apiKey may be empty.
func NewJWKSFetcher(ctx context.Context, jwksURL, apiKey string, minRefresh time.Duration) (*JWKSFetcher, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if apiKey != "" {
		transport = &apiKeyTransport{base: transport, apiKey: apiKey}
	}
	client := &http.Client{Timeout: jwksFetchTimeout, Transport: transport}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL,
		jwk.WithMinRefreshInterval(minRefresh),
		jwk.WithHTTPClient(client),
	); err != nil {
		return nil, fmt.Errorf("failed to register JWKS url: %w", err)
	}
	return &JWKSFetcher{
		cache:      cache,
		url:        jwksURL,
		minRefresh: minRefresh,
		now:        time.Now,
	}, nil
}

// FetchPublicKey returns the raw public key (ecdsa or rsa) for kid
func (f *JWKSFetcher) FetchPublicKey(ctx context.Context, kid string) (interface{}, error) {
	set, err := f.cache.Get(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		if !f.claimForcedRefresh() {
			return nil, fmt.Errorf("key %q not found in JWKS", kid)
		}
		set, err = f.cache.Refresh(ctx, f.url)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh JWKS: %w", err)
		}
		key, ok = set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("key %q not found in JWKS", kid)
		}
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to materialize key %q: %w", kid, err)
	}
	return raw, nil
}

// claimForcedRefresh reports whether an unknown kid may trigger a refresh now
func (f *JWKSFetcher) claimForcedRefresh() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	if !f.lastForced.IsZero() && now.Sub(f.lastForced) < f.minRefresh {
		return false
	}
	f.lastForced = now
	return true
}
