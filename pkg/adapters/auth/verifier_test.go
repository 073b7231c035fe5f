package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/auth"
	"github.com/wadjakorntonsri/linkcomment/pkg/adapters/auth/authtest"
	"github.com/wadjakorntonsri/linkcomment/pkg/core/domain"
)

func newVerifier(p *authtest.Provider, opts ...auth.KeySetOption) *auth.Verifier {
	keys := auth.NewKeySet(p.JWKSURL(), opts...)
	return auth.NewVerifier(keys, authtest.Audience, authtest.Issuer, []string{"RS256"})
}

func TestVerifyValidToken(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p)

	id, err := v.Verify(context.Background(), "Bearer "+p.Token(t, "user-1"))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.Subject != "user-1" {
		t.Errorf("Subject = %q, want %q", id.Subject, "user-1")
	}
	if _, ok := id.Claims["sub"]; ok {
		t.Error("sub should be lifted out of Claims")
	}
	if id.Claims["scope"] != "read:linkcomment write:linkcomment" {
		t.Errorf("scope claim not preserved: %v", id.Claims["scope"])
	}
}

func TestVerifySchemeIsCaseInsensitive(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p)
	token := p.Token(t, "user-1")

	for _, header := range []string{"bearer " + token, "BEARER " + token, "Bearer   " + token + "  "} {
		if _, err := v.Verify(context.Background(), header); err != nil {
			t.Errorf("Verify(%q) failed: %v", header[:10], err)
		}
	}
}

func TestVerifyMalformedHeader(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p)
	token := p.Token(t, "user-1")

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty", header: ""},
		{name: "whitespace only", header: "   "},
		{name: "single token", header: token},
		{name: "scheme only", header: "Bearer"},
		{name: "wrong scheme", header: "Basic " + token},
		{name: "three fields", header: "Bearer " + token + " extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.header)
			if kind, _ := domain.AuthErrorKindOf(err); kind != domain.AuthMalformedHeader {
				t.Errorf("expected MalformedHeader, got %v", err)
			}
		})
	}

	if p.Fetches() != 0 {
		t.Errorf("malformed headers must not reach the key set, saw %d fetches", p.Fetches())
	}
}

func TestVerifyInvalidToken(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p)

	foreignKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	withClaim := func(k string, val any) jwt.MapClaims {
		c := authtest.Claims("user-1")
		c[k] = val
		return c
	}
	without := func(k string) jwt.MapClaims {
		c := authtest.Claims("user-1")
		delete(c, k)
		return c
	}

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, authtest.Claims("user-1"))
	hs.Header["kid"] = "key-1"
	hsToken, err := hs.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign hs256: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong audience", token: p.Sign(t, withClaim("aud", "https://other.test"))},
		{name: "wrong issuer", token: p.Sign(t, withClaim("iss", "https://evil.test/"))},
		{name: "expired", token: p.Sign(t, withClaim("exp", time.Now().Add(-time.Minute).Unix()))},
		{name: "not yet valid", token: p.Sign(t, withClaim("nbf", time.Now().Add(time.Hour).Unix()))},
		{name: "no subject", token: p.Sign(t, without("sub"))},
		{name: "signed by unpublished key", token: authtest.SignWith(t, foreignKey, "key-1", authtest.Claims("user-1"))},
		{name: "no kid", token: authtest.SignWith(t, foreignKey, "", authtest.Claims("user-1"))},
		{name: "disallowed algorithm", token: hsToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), "Bearer "+tt.token)
			if kind, _ := domain.AuthErrorKindOf(err); kind != domain.AuthInvalidToken {
				t.Errorf("expected InvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyKeyResolutionFailed(t *testing.T) {
	t.Run("jwks endpoint down", func(t *testing.T) {
		p := authtest.NewProvider(t)
		p.SetFailing(true)
		v := newVerifier(p)

		_, err := v.Verify(context.Background(), "Bearer "+p.Token(t, "user-1"))
		if kind, _ := domain.AuthErrorKindOf(err); kind != domain.AuthKeyResolutionFailed {
			t.Errorf("expected KeyResolutionFailed, got %v", err)
		}
	})

	t.Run("unknown kid", func(t *testing.T) {
		p := authtest.NewProvider(t)
		v := newVerifier(p)

		other, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		token := authtest.SignWith(t, other, "never-published", authtest.Claims("user-1"))

		_, err = v.Verify(context.Background(), "Bearer "+token)
		if kind, _ := domain.AuthErrorKindOf(err); kind != domain.AuthKeyResolutionFailed {
			t.Errorf("expected KeyResolutionFailed, got %v", err)
		}
	})
}

func TestKeySetCachesDocument(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p)
	token := p.Token(t, "user-1")

	for i := 0; i < 5; i++ {
		if _, err := v.Verify(context.Background(), "Bearer "+token); err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
	}
	if p.Fetches() != 1 {
		t.Errorf("expected 1 JWKS fetch, got %d", p.Fetches())
	}
}

func TestKeySetCoalescesConcurrentFetches(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p)
	token := p.Token(t, "user-1")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := v.Verify(context.Background(), "Bearer "+token); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Verify failed: %v", err)
	}
	if p.Fetches() != 1 {
		t.Errorf("expected concurrent fetches to be coalesced, got %d", p.Fetches())
	}
}

func TestKeySetPicksUpRotatedKey(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p, auth.WithMinRefreshInterval(0))

	if _, err := v.Verify(context.Background(), "Bearer "+p.Token(t, "user-1")); err != nil {
		t.Fatalf("Verify with first key failed: %v", err)
	}

	p.Rotate(t)
	if _, err := v.Verify(context.Background(), "Bearer "+p.Token(t, "user-1")); err != nil {
		t.Fatalf("Verify with rotated key failed: %v", err)
	}
	if p.Fetches() != 2 {
		t.Errorf("expected a refetch for the new kid, got %d fetches", p.Fetches())
	}
}

func TestKeySetThrottlesUnknownKidRefresh(t *testing.T) {
	p := authtest.NewProvider(t)
	v := newVerifier(p, auth.WithMinRefreshInterval(time.Hour))

	if _, err := v.Verify(context.Background(), "Bearer "+p.Token(t, "user-1")); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	token := authtest.SignWith(t, other, "unknown", authtest.Claims("user-1"))
	for i := 0; i < 3; i++ {
		_, _ = v.Verify(context.Background(), "Bearer "+token)
	}
	if p.Fetches() != 1 {
		t.Errorf("unknown kids must not hammer the JWKS endpoint, got %d fetches", p.Fetches())
	}
}
