package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/linkcomment/pkg/config"
	"github.com/wadjakorntonsri/linkcomment/pkg/core/domain"
	"github.com/wadjakorntonsri/linkcomment/pkg/ports"
)

var _ ports.TokenVerifier = (*Verifier)(nil)

var (
	errKeyResolution = errors.New("key resolution failed")
	errMissingKID    = errors.New("token header has no kid")
)

// KeyResolver looks up a verification key by its kid.
type KeyResolver interface {
	Key(ctx context.Context, kid string) (jose.JSONWebKey, error)
}

// Verifier validates bearer tokens issued by an external identity provider.
type Verifier struct {
	keys   KeyResolver
	parser *jwt.Parser
}

// NewVerifier checks signatures with keys from keys, accepting only the
// given algorithms, and requires aud and iss to match. exp and nbf are
// enforced when present.
func NewVerifier(keys KeyResolver, audience, issuer string, algorithms []string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(algorithms),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &Verifier{
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}
}

// NewFromConfig builds a Verifier backed by a cached remote key set.
func NewFromConfig(cfg *config.Config) *Verifier {
	keys := NewKeySet(cfg.JWKSURL(), WithCacheTTL(cfg.JWKSCacheTTL))
	return NewVerifier(keys, cfg.Auth0Audience, cfg.Issuer(), cfg.Auth0Algorithms)
}

// Verify authenticates the value of an Authorization header. Errors are
// always *domain.AuthError.
func (v *Verifier) Verify(ctx context.Context, authorizationHeader string) (domain.Identity, error) {
	raw, err := BearerToken(authorizationHeader)
	if err != nil {
		return domain.Identity{}, domain.NewAuthError(domain.AuthMalformedHeader, err)
	}

	claims := jwt.MapClaims{}
	_, err = v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.keyFor(ctx, t)
	})
	if err != nil {
		if errors.Is(err, errKeyResolution) {
			return domain.Identity{}, domain.NewAuthError(domain.AuthKeyResolutionFailed, err)
		}
		return domain.Identity{}, domain.NewAuthError(domain.AuthInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Identity{}, domain.NewAuthError(domain.AuthInvalidToken, errors.New("token has no subject"))
	}

	extra := make(map[string]any, len(claims))
	for k, val := range claims {
		if k != "sub" {
			extra[k] = val
		}
	}
	return domain.Identity{Subject: sub, Claims: extra}, nil
}

func (v *Verifier) keyFor(ctx context.Context, t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errMissingKID
	}

	key, err := v.keys.Key(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errKeyResolution, err)
	}
	if key.Algorithm != "" && key.Algorithm != t.Method.Alg() {
		return nil, fmt.Errorf("key %q is for %s, token uses %s", kid, key.Algorithm, t.Method.Alg())
	}
	if !key.IsPublic() {
		key = key.Public()
	}
	return key.Key, nil
}

// BearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively and exactly two fields are required.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", errors.New("authorization header must be \"Bearer <token>\"")
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("unsupported authorization scheme %q", parts[0])
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
