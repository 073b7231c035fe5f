// Package authtest runs a fake identity provider for tests: an RSA signing
// key published through an httptest JWKS endpoint.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

const (
	Audience = "https://linkcomment.test/api"
	Issuer   = "https://tenant.auth.test/"
)

type signingKey struct {
	kid string
	key *rsa.PrivateKey
}

// Provider is a fake identity provider.
type Provider struct {
	Server *httptest.Server

	mu      sync.Mutex
	keys    []signingKey
	fetches atomic.Int64
	failing atomic.Bool
}

// NewProvider starts a JWKS server with one signing key. It is shut down
// when the test ends.
func NewProvider(t *testing.T) *Provider {
	t.Helper()

	p := &Provider{}
	p.Rotate(t)

	p.Server = httptest.NewServer(http.HandlerFunc(p.serveJWKS))
	t.Cleanup(p.Server.Close)
	return p
}

// JWKSURL is the address of the key-discovery document.
func (p *Provider) JWKSURL() string {
	return p.Server.URL + "/.well-known/jwks.json"
}

// Fetches counts JWKS requests served so far.
func (p *Provider) Fetches() int {
	return int(p.fetches.Load())
}

// SetFailing makes the JWKS endpoint answer 500.
func (p *Provider) SetFailing(failing bool) {
	p.failing.Store(failing)
}

// Rotate adds a new signing key and makes it current. Earlier keys stay
// published.
func (p *Provider) Rotate(t *testing.T) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	kid := fmt.Sprintf("key-%d", len(p.keys)+1)
	p.keys = append(p.keys, signingKey{kid: kid, key: key})
	return kid
}

func (p *Provider) current() signingKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys[len(p.keys)-1]
}

func (p *Provider) serveJWKS(w http.ResponseWriter, r *http.Request) {
	p.fetches.Add(1)
	if p.failing.Load() {
		http.Error(w, "unavailable", http.StatusInternalServerError)
		return
	}

	p.mu.Lock()
	set := jose.JSONWebKeySet{}
	for _, k := range p.keys {
		set.Keys = append(set.Keys, jose.JSONWebKey{
			Key:       &k.key.PublicKey,
			KeyID:     k.kid,
			Algorithm: "RS256",
			Use:       "sig",
		})
	}
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(set)
}

// Claims returns a valid claim set for subject.
func Claims(subject string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":   subject,
		"aud":   Audience,
		"iss":   Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"scope": "read:linkcomment write:linkcomment",
	}
}

// Sign signs claims with the current key.
func (p *Provider) Sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	k := p.current()
	return SignWith(t, k.key, k.kid, claims)
}

// Token returns a valid token for subject.
func (p *Provider) Token(t *testing.T, subject string) string {
	t.Helper()
	return p.Sign(t, Claims(subject))
}

// SignWith signs claims with an arbitrary key, published or not.
func SignWith(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
