package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/client/identity"
	"github.com/dmitrijs2005/daybook/internal/client/models"
)

func (a *App) getStatus() string {
	var parts []string
	if p, ok := a.identity.CurrentPrincipal(); ok {
		parts = append(parts, fmt.Sprintf("%s:%s", a.identity.State(), shortID(p.ID)))
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, " "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// announce prints identity transitions as they happen.
func (a *App) announce(p models.Principal, s identity.State) {
	if s == identity.Unauthenticated {
		fmt.Fprintln(a.out, "Identity: signed out")
		return
	}
	fmt.Fprintf(a.out, "Identity: %s %s\n", s, p.ID)
}

// Root restores the persisted session, starts the connectivity watcher and
// runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {

	a.logger.Info(ctx, "Welcome to daybook CLI (type 'help' for commands)")

	if a.restore != nil {
		if err := a.restore(ctx); err != nil {
			a.logger.Warn(ctx, "session restore failed", "error", err)
		}
	}
	if a.subscribe != nil {
		a.unsubscribe = a.subscribe(a.announce)
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(wctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
