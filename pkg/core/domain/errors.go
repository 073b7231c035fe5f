package domain

import (
	"errors"
	"fmt"
)

// AuthErrorKind classifies why a request could not be authenticated.
type AuthErrorKind int

const (
	// AuthMalformedHeader means the Authorization header is missing or is not "Bearer <token>".
	AuthMalformedHeader AuthErrorKind = iota + 1
	// AuthKeyResolutionFailed means the signing key could not be fetched or matched.
	AuthKeyResolutionFailed
	// AuthInvalidToken means the token failed signature or claim validation.
	AuthInvalidToken
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthMalformedHeader:
		return "malformed_header"
	case AuthKeyResolutionFailed:
		return "key_resolution_failed"
	case AuthInvalidToken:
		return "invalid_token"
	default:
		return "unknown"
	}
}

// AuthError is returned by token verification.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth: " + e.Kind.String()
	}
	return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError wraps err with the given kind.
func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// AuthErrorKindOf reports the kind of the first AuthError in err's chain.
func AuthErrorKindOf(err error) (AuthErrorKind, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// StoreOp names a storage operation.
type StoreOp string

const (
	OpInsert StoreOp = "insert"
	OpList   StoreOp = "list"
	OpDelete StoreOp = "delete"
)

// StoreError wraps any failure of the record store. Callers outside the
// process only learn that the operation failed, never why.
type StoreError struct {
	Op  StoreOp
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrInvalidInput is returned by services for arguments they refuse to store.
var ErrInvalidInput = errors.New("invalid input")
