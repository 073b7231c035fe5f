package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/wadjakorntonsri/linkcomment/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// ErrKeyNotFound is returned when no key in the published set matches a kid.
var ErrKeyNotFound = errors.New("no signing key matches kid")

const (
	defaultCacheTTL           = 10 * time.Minute
	defaultMinRefreshInterval = 30 * time.Second
	maxJWKSBytes              = 1 << 20
)

// KeySet resolves signing keys by kid from a remote JWKS document. The
// document is cached for cacheTTL and refetched early when an unknown kid
// shows up, at most once per minRefresh.
type KeySet struct {
	url        string
	client     *http.Client
	cacheTTL   time.Duration
	minRefresh time.Duration
	now        func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	keys      jose.JSONWebKeySet
	fetchedAt time.Time
}

// KeySetOption configures a KeySet.
type KeySetOption func(*KeySet)

// WithHTTPClient sets the client used to fetch the JWKS document.
func WithHTTPClient(c *http.Client) KeySetOption {
	return func(ks *KeySet) { ks.client = c }
}

// WithCacheTTL sets how long a fetched document is trusted. Zero disables caching.
func WithCacheTTL(d time.Duration) KeySetOption {
	return func(ks *KeySet) { ks.cacheTTL = d }
}

// WithMinRefreshInterval bounds how often an unknown kid may force a refetch.
func WithMinRefreshInterval(d time.Duration) KeySetOption {
	return func(ks *KeySet) { ks.minRefresh = d }
}

func NewKeySet(jwksURL string, opts ...KeySetOption) *KeySet {
	ks := &KeySet{
		url:        jwksURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		cacheTTL:   defaultCacheTTL,
		minRefresh: defaultMinRefreshInterval,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ks)
	}
	return ks
}

// Key returns the public key published under kid.
func (ks *KeySet) Key(ctx context.Context, kid string) (jose.JSONWebKey, error) {
	ks.mu.RLock()
	seen := ks.fetchedAt
	ks.mu.RUnlock()
	loaded := !seen.IsZero()
	age := ks.now().Sub(seen)

	if loaded && age < ks.cacheTTL {
		if key, ok := ks.lookup(kid); ok {
			return key, nil
		}
		if age < ks.minRefresh {
			return jose.JSONWebKey{}, fmt.Errorf("%w: %q", ErrKeyNotFound, kid)
		}
	}

	if err := ks.refresh(ctx, seen); err != nil {
		return jose.JSONWebKey{}, err
	}

	if key, ok := ks.lookup(kid); ok {
		return key, nil
	}
	return jose.JSONWebKey{}, fmt.Errorf("%w: %q", ErrKeyNotFound, kid)
}

func (ks *KeySet) lookup(kid string) (jose.JSONWebKey, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	for _, k := range ks.keys.Key(kid) {
		if k.Use == "" || k.Use == "sig" {
			return k, true
		}
	}
	return jose.JSONWebKey{}, false
}

// refresh fetches the document once for any number of concurrent callers.
// A caller that decided to refresh based on the document fetched at seen
// skips the request if a newer one has landed since.
func (ks *KeySet) refresh(ctx context.Context, seen time.Time) error {
	ch := ks.group.DoChan("jwks", func() (any, error) {
		ks.mu.RLock()
		newer := ks.fetchedAt.After(seen)
		ks.mu.RUnlock()
		if newer {
			return nil, nil
		}

		// Detached from the first caller so its cancellation does not fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()

		set, err := ks.fetch(fetchCtx)
		metrics.JWKSFetchesTotal.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			return nil, err
		}

		ks.mu.Lock()
		ks.keys = set
		ks.fetchedAt = ks.now()
		ks.mu.Unlock()
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ks *KeySet) fetch(ctx context.Context) (jose.JSONWebKeySet, error) {
	var set jose.JSONWebKeySet

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return set, fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ks.client.Do(req)
	if err != nil {
		return set, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return set, fmt.Errorf("fetch jwks: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&set); err != nil {
		return set, fmt.Errorf("decode jwks: %w", err)
	}
	return set, nil
}
