// Package services contains server-side business logic: UserService issues
// and rotates sessions for anonymous and durable users, DayService serves the
// cloud day mirror.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/cryptox"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/server/auth"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/metrics"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is what every successful sign-in returns.
type Session struct {
	UserID    string
	Anonymous bool
	TokenPair
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	metrics                      *metrics.Metrics
	logger                       logging.Logger
	now                          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mt *metrics.Metrics, l logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		metrics:                      mt,
		logger:                       l.With("module", "users"),
		now:                          time.Now,
	}
}

func validateCredential(email, password string) error {
	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, is.EmailFormat),
		"password": validation.Validate(password, validation.Required, validation.Length(6, 256)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidCredential, err)
	}
	return nil
}

// SignInAnonymously creates a fresh anonymous user and opens a session for it.
func (s *UserService) SignInAnonymously(ctx context.Context) (*Session, error) {
	var sess *Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{Anonymous: true})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		pair, err := s.generateTokenPair(ctx, u.ID, tx)
		if err != nil {
			return err
		}
		sess = &Session{UserID: u.ID, Anonymous: true, TokenPair: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SignIn("anonymous")
	s.logger.Info(ctx, "anonymous user created", "user_id", sess.UserID)
	return sess, nil
}

// LinkCredential makes the anonymous user userID durable under email. The
// user id is preserved. It fails with common.ErrCredentialAlreadyInUse when
// email belongs to someone else and with common.ErrNotAnonymous when userID
// is already durable.
func (s *UserService) LinkCredential(ctx context.Context, userID, email, password string) (*Session, error) {
	if err := validateCredential(email, password); err != nil {
		return nil, err
	}

	hash := cryptox.HashPassword([]byte(password))

	var sess *Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		u, err := users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error loading user: %w", err)
		}
		if !u.Anonymous {
			return common.ErrNotAnonymous
		}

		if err := users.LinkCredential(ctx, userID, email, hash); err != nil {
			return err
		}

		pair, err := s.generateTokenPair(ctx, userID, tx)
		if err != nil {
			return err
		}
		sess = &Session{UserID: userID, TokenPair: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SignIn("link")
	s.logger.Info(ctx, "credential linked", "user_id", userID)
	return sess, nil
}

// SignIn verifies a durable credential. Unknown emails and wrong passwords
// both yield common.ErrorUnauthorized.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if err := validateCredential(email, password); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(u.PasswordHash, []byte(password)) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, u.ID, s.db)
	if err != nil {
		return nil, err
	}

	s.metrics.SignIn("credential")
	return &Session{UserID: u.ID, TokenPair: *pair}, nil
}

// SignOut revokes refreshToken. Unknown tokens are not an error.
func (s *UserService) SignOut(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a new session. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var sess *Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		u, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}

		pair, err := s.generateTokenPair(ctx, u.ID, tx)
		if err != nil {
			return err
		}
		sess = &Session{UserID: u.ID, Anonymous: u.Anonymous, TokenPair: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
