package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/client/config"
	"github.com/dmitrijs2005/daybook/internal/client/identity"
	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/client/services"
	"github.com/dmitrijs2005/daybook/internal/client/settings"
	"github.com/dmitrijs2005/daybook/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Identity is the part of identity.Manager the REPL drives.
type Identity interface {
	SignInAnonymously(ctx context.Context) (models.Principal, error)
	Promote(ctx context.Context, cred models.Credential) (models.Principal, error)
	SignIn(ctx context.Context, cred models.Credential) (models.Principal, error)
	SignOut(ctx context.Context)
	CurrentPrincipal() (models.Principal, bool)
	State() identity.State
}

// Preferences loads and updates user settings.
type Preferences interface {
	Load(ctx context.Context) (settings.Settings, error)
	Update(ctx context.Context, mutate func(*settings.Settings) error) (settings.Settings, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	identity Identity
	syncer   services.SyncService
	journal  services.JournalService
	prefs    Preferences
	pinger   pinger
	closers  []io.Closer

	restore     func(ctx context.Context) error
	subscribe   func(h identity.Handler) func()
	unsubscribe func()

	mu   sync.RWMutex
	mode Mode

	now    func() time.Time
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		l.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}
	repos := client.NewRepositories(db, l)

	apiClient, err := client.NewDayBookClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	im := identity.NewManager(apiClient, repos.Metadata, l)

	return &App{
		config:    c,
		logger:    l,
		identity:  im,
		syncer:    services.NewSyncService(im, repos.Days, apiClient, l),
		journal:   services.NewJournalService(repos.Days, l),
		prefs:     settings.NewStore(repos.Metadata, l),
		pinger:    apiClient,
		closers:   []io.Closer{apiClient, dbCloser{db}},
		restore:   im.Restore,
		subscribe: im.Subscribe,
		now:       time.Now,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}, nil
}

type dbCloser struct{ db *sql.DB }

func (d dbCloser) Close() error { return d.db.Close() }

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)
	a.Root(ctx)
}

func (a *App) close(ctx context.Context) {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}
}

func (a *App) isSignedIn() bool {
	return a.identity.State() != identity.Unauthenticated
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.pinger.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
