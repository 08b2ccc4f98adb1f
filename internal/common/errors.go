// Package common defines shared constants and sentinel errors used across
// client and server layers of daybook. Callers should use errors.Is / errors.As
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrCredentialAlreadyInUse is returned when a durable credential is
	// already bound to a different principal.
	ErrCredentialAlreadyInUse = errors.New("credential already in use")

	// ErrInvalidCredential is returned when an email/password pair is
	// malformed.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidDate is returned for a day key that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date key")

	// ErrPrincipalMismatch is returned when a request addresses another
	// principal's data.
	ErrPrincipalMismatch = errors.New("principal mismatch")
)

// Identity precondition errors. All of them match ErrIdentity.
var (
	ErrIdentity           = errors.New("identity precondition not met")
	ErrAnonymousPrincipal = fmt.Errorf("%w: anonymous principal", ErrIdentity)
	ErrNotSignedIn        = fmt.Errorf("%w: no principal", ErrIdentity)
	ErrNotAnonymous       = fmt.Errorf("%w: principal is not anonymous", ErrIdentity)
	ErrAlreadySignedIn    = fmt.Errorf("%w: already signed in", ErrIdentity)
)

// IOError reports a failure of the on-device storage.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("local storage %s: %v", e.Op, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// TransportError reports a failed remote call (network, permission, quota).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("remote %s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }
