package client

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/mirror"
)

// Session is the outcome of a successful sign-in style call.
type Session struct {
	Principal    models.Principal
	AccessToken  string
	RefreshToken string
}

// AuthClient is the identity half of the transport.
type AuthClient interface {
	SignInAnonymously(ctx context.Context) (Session, error)
	// LinkCredential binds cred to the current anonymous principal. It fails
	// with common.ErrCredentialAlreadyInUse when cred belongs to another one.
	LinkCredential(ctx context.Context, cred models.Credential) (Session, error)
	SignInWithCredential(ctx context.Context, cred models.Credential) (Session, error)
	SignOut(ctx context.Context) error
	// SetTokens installs the tokens used by subsequent calls.
	SetTokens(accessToken, refreshToken string)
	// OnTokensRefreshed registers a callback run after a transparent refresh.
	OnTokensRefreshed(fn func(accessToken, refreshToken string))
}

// DayMirror is the cloud day mirror half of the transport.
type DayMirror interface {
	Exists(ctx context.Context, principalID, date string) (bool, error)
	// Upsert merge-writes rec. A nil timestamp in rec leaves the stored
	// value untouched, a non-nil one is stamped with the server clock.
	Upsert(ctx context.Context, principalID, date string, rec mirror.RemoteDayRecord) error
	ListAll(ctx context.Context, principalID string) ([]mirror.RawDay, error)
}

type Client interface {
	AuthClient
	DayMirror
	Ping(ctx context.Context) error
	Close() error
}
