// Package settings holds user preferences of the CLI. Consumers load a
// snapshot and change it only through Update, which persists the result.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const settingsKey = "settings"

const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

type Settings struct {
	Theme    string `json:"theme"`
	Nickname string `json:"nickname"`
}

func Defaults() Settings {
	return Settings{Theme: ThemeSystem}
}

func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Theme, validation.Required, validation.In(ThemeSystem, ThemeLight, ThemeDark)),
		validation.Field(&s.Nickname, validation.Length(0, 40)),
	)
}

type Store struct {
	repo   metadata.Repository
	logger logging.Logger
}

func NewStore(repo metadata.Repository, l logging.Logger) *Store {
	return &Store{repo: repo, logger: l.With("module", "settings")}
}

// Load returns the persisted settings, or the defaults when none are stored
// or the stored value cannot be decoded.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	raw, err := s.repo.Get(ctx, settingsKey)
	if err != nil {
		return Settings{}, &common.IOError{Op: "load settings", Err: err}
	}
	if raw == nil {
		return Defaults(), nil
	}

	out := Defaults()
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Warn(ctx, "unreadable settings, using defaults", "error", err)
		return Defaults(), nil
	}
	return out, nil
}

// Update applies mutate to the current settings and persists the result.
// Nothing is written when mutate fails or the result is invalid.
func (s *Store) Update(ctx context.Context, mutate func(*Settings) error) (Settings, error) {
	cur, err := s.Load(ctx)
	if err != nil {
		return Settings{}, err
	}

	next := cur
	if err := mutate(&next); err != nil {
		return cur, err
	}
	if err := next.Validate(); err != nil {
		return cur, fmt.Errorf("invalid settings: %w", err)
	}

	raw, err := json.Marshal(next)
	if err != nil {
		return cur, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.repo.Set(ctx, settingsKey, raw); err != nil {
		return cur, &common.IOError{Op: "save settings", Err: err}
	}

	s.logger.Debug(ctx, "settings updated", "theme", next.Theme)
	return next, nil
}
