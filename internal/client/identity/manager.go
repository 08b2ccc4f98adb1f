package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
)

const sessionKey = "session"

type storedSession struct {
	UserID       string `json:"userId"`
	Anonymous    bool   `json:"anonymous"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type subscription struct {
	id int
	h  Handler
}

// Manager is safe for concurrent use.
type Manager struct {
	client client.AuthClient
	store  metadata.Repository
	logger logging.Logger

	mu        sync.Mutex
	session   storedSession
	state     State
	subs      []subscription
	nextSubID int
}

func NewManager(c client.AuthClient, store metadata.Repository, l logging.Logger) *Manager {
	m := &Manager{
		client: c,
		store:  store,
		logger: l.With("module", "identity"),
	}
	c.OnTokensRefreshed(m.tokensRefreshed)
	return m
}

// Restore reloads a persisted session. A missing session leaves the manager
// Unauthenticated; an undecodable one is dropped.
func (m *Manager) Restore(ctx context.Context) error {
	raw, err := m.store.Get(ctx, sessionKey)
	if err != nil {
		return &common.IOError{Op: "load session", Err: err}
	}
	if raw == nil {
		return nil
	}

	var s storedSession
	if err := json.Unmarshal(raw, &s); err != nil || s.UserID == "" {
		m.logger.Warn(ctx, "dropping unreadable session", "error", err)
		if err := m.store.Delete(ctx, sessionKey); err != nil {
			m.logger.Warn(ctx, "failed to delete session", "error", err)
		}
		return nil
	}

	m.client.SetTokens(s.AccessToken, s.RefreshToken)
	m.set(ctx, s)
	return nil
}

func (m *Manager) SignInAnonymously(ctx context.Context) (models.Principal, error) {
	if m.State() != Unauthenticated {
		return models.Principal{}, common.ErrAlreadySignedIn
	}

	sess, err := m.client.SignInAnonymously(ctx)
	if err != nil {
		return models.Principal{}, err
	}
	return m.adopt(ctx, sess), nil
}

// Promote binds cred to the current anonymous principal. When cred is
// already bound elsewhere the manager signs in as that principal instead.
// Other failures are returned unmodified and leave the session untouched.
func (m *Manager) Promote(ctx context.Context, cred models.Credential) (models.Principal, error) {
	m.mu.Lock()
	state, from := m.state, m.session.UserID
	m.mu.Unlock()

	if state != Anonymous {
		return models.Principal{}, common.ErrNotAnonymous
	}

	sess, err := m.client.LinkCredential(ctx, cred)
	if errors.Is(err, common.ErrCredentialAlreadyInUse) {
		sess, err = m.client.SignInWithCredential(ctx, cred)
		if err != nil {
			return models.Principal{}, err
		}
		m.logger.Warn(ctx, "credential bound to another principal, switching",
			"from", from, "to", sess.Principal.ID)
	} else if err != nil {
		return models.Principal{}, err
	}

	return m.adopt(ctx, sess), nil
}

// SignIn signs in with a durable credential, replacing any current session.
func (m *Manager) SignIn(ctx context.Context, cred models.Credential) (models.Principal, error) {
	sess, err := m.client.SignInWithCredential(ctx, cred)
	if err != nil {
		return models.Principal{}, err
	}
	return m.adopt(ctx, sess), nil
}

// SignOut always ends the local session. Remote and storage failures are
// logged and otherwise ignored.
func (m *Manager) SignOut(ctx context.Context) {
	if err := m.client.SignOut(ctx); err != nil {
		m.logger.Warn(ctx, "remote sign out failed", "error", err)
	}
	if err := m.store.Delete(ctx, sessionKey); err != nil {
		m.logger.Warn(ctx, "failed to delete session", "error", err)
	}
	m.set(ctx, storedSession{})
}

func (m *Manager) CurrentPrincipal() (models.Principal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Unauthenticated {
		return models.Principal{}, false
	}
	return models.Principal{ID: m.session.UserID, Anonymous: m.session.Anonymous}, true
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RequireDurable returns the current principal, or an error matching
// common.ErrIdentity when there is none or when it is anonymous and
// requireDurable is set.
func (m *Manager) RequireDurable(requireDurable bool) (models.Principal, error) {
	p, ok := m.CurrentPrincipal()
	if !ok {
		return models.Principal{}, common.ErrNotSignedIn
	}
	if requireDurable && p.Anonymous {
		return models.Principal{}, common.ErrAnonymousPrincipal
	}
	return p, nil
}

// Subscribe registers h for session changes and returns a function that
// removes it. Handlers run on the goroutine that changed the session.
func (m *Manager) Subscribe(h Handler) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs = append(m.subs, subscription{id: id, h: h})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *Manager) adopt(ctx context.Context, sess client.Session) models.Principal {
	s := storedSession{
		UserID:       sess.Principal.ID,
		Anonymous:    sess.Principal.Anonymous,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}
	if err := m.persist(ctx, s); err != nil {
		m.logger.Warn(ctx, "session kept in memory only", "error", err)
	}
	m.set(ctx, s)
	m.logger.Info(ctx, "signed in", "principal", s.UserID, "anonymous", s.Anonymous)
	return sess.Principal
}

func (m *Manager) tokensRefreshed(accessToken, refreshToken string) {
	ctx := context.Background()

	m.mu.Lock()
	if m.state == Unauthenticated {
		m.mu.Unlock()
		return
	}
	m.session.AccessToken = accessToken
	m.session.RefreshToken = refreshToken
	s := m.session
	m.mu.Unlock()

	if err := m.persist(ctx, s); err != nil {
		m.logger.Warn(ctx, "failed to persist refreshed tokens", "error", err)
	}
}

func (m *Manager) persist(ctx context.Context, s storedSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.store.Set(ctx, sessionKey, raw); err != nil {
		return &common.IOError{Op: "save session", Err: err}
	}
	return nil
}

func (m *Manager) set(ctx context.Context, s storedSession) {
	m.mu.Lock()
	m.session = s
	var p models.Principal
	if s.UserID == "" {
		m.state = Unauthenticated
	} else {
		p = models.Principal{ID: s.UserID, Anonymous: s.Anonymous}
		m.state = stateOf(p)
	}
	state := m.state
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	m.logger.Debug(ctx, "session changed", "state", state.String(), "principal", p.ID)
	for _, sub := range subs {
		sub.h(p, state)
	}
}
