package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/client/settings"
)

// Theme shows or changes the UI theme: theme [system|light|dark].
func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s, err := a.prefs.Load(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Theme: %s\n", s.Theme)
		return nil
	}

	s, err := a.prefs.Update(ctx, func(s *settings.Settings) error {
		s.Theme = args[0]
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Theme set to %s\n", s.Theme)
	return nil
}

// Nickname shows or changes the display name: nickname [name...].
func (a *App) Nickname(ctx context.Context, args []string) error {
	if len(args) == 0 {
		s, err := a.prefs.Load(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Nickname: %s\n", s.Nickname)
		return nil
	}

	s, err := a.prefs.Update(ctx, func(s *settings.Settings) error {
		s.Nickname = strings.Join(args, " ")
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Nickname set to %s\n", s.Nickname)
	return nil
}
