package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/client/repositories/days"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- fakes ----

type fakePrincipals struct {
	p  models.Principal
	ok bool
}

func (f *fakePrincipals) RequireDurable(requireDurable bool) (models.Principal, error) {
	if !f.ok {
		return models.Principal{}, common.ErrNotSignedIn
	}
	if requireDurable && f.p.Anonymous {
		return models.Principal{}, common.ErrAnonymousPrincipal
	}
	return f.p, nil
}

func durable(id string) *fakePrincipals   { return &fakePrincipals{p: models.Principal{ID: id}, ok: true} }
func anonymous(id string) *fakePrincipals { return &fakePrincipals{p: models.Principal{ID: id, Anonymous: true}, ok: true} }

type storedDay struct {
	doc       map[string]any
	createdAt time.Time
	updatedAt time.Time
}

// fakeMirror merge-writes like the server: a nil timestamp keeps the stored
// value, a requested one is stamped with the fake server clock.
type fakeMirror struct {
	days  map[string]map[string]storedDay
	clock time.Time

	existsCalls int
	upserts     []string
	lists       int

	existsErr error
	upsertErr map[string]error
	listErr   error
}

var _ client.DayMirror = (*fakeMirror)(nil)

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		days:      map[string]map[string]storedDay{},
		clock:     time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		upsertErr: map[string]error{},
	}
}

func (f *fakeMirror) calls() int { return f.existsCalls + len(f.upserts) + f.lists }

func (f *fakeMirror) Exists(_ context.Context, principalID, date string) (bool, error) {
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.days[principalID][date]
	return ok, nil
}

func (f *fakeMirror) Upsert(_ context.Context, principalID, date string, rec mirror.RemoteDayRecord) error {
	f.upserts = append(f.upserts, date)
	if err := f.upsertErr[date]; err != nil {
		return err
	}
	f.clock = f.clock.Add(time.Second)

	if f.days[principalID] == nil {
		f.days[principalID] = map[string]storedDay{}
	}
	cur := f.days[principalID][date]
	cur.doc = rec.Document()
	if rec.CreatedAt != nil {
		cur.createdAt = f.clock
	}
	if rec.UpdatedAt != nil {
		cur.updatedAt = f.clock
	}
	f.days[principalID][date] = cur
	return nil
}

func (f *fakeMirror) ListAll(_ context.Context, principalID string) ([]mirror.RawDay, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []mirror.RawDay
	for date, d := range f.days[principalID] {
		out = append(out, mirror.RawDay{Date: date, Data: d.doc})
	}
	return out, nil
}

func (f *fakeMirror) put(principalID, date string, doc map[string]any) {
	if f.days[principalID] == nil {
		f.days[principalID] = map[string]storedDay{}
	}
	f.days[principalID][date] = storedDay{doc: doc, createdAt: f.clock, updatedAt: f.clock}
}

type failingDays struct {
	loadErr error
	saveErr error
	saved   models.EntryMap
}

func (f *failingDays) LoadAll(context.Context) (models.EntryMap, error) { return nil, f.loadErr }
func (f *failingDays) SaveAll(_ context.Context, m models.EntryMap) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = m
	return nil
}

// ---- helpers ----

var restoreNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupDays(t *testing.T) days.Repository {
	t.Helper()
	_, d := setupDaysDB(t)
	return d
}

func setupDaysDB(t *testing.T) (*sql.DB, days.Repository) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE days (
  date       TEXT PRIMARY KEY,
  payload    TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db, days.NewSQLiteRepository(db, logging.Discard())
}

func newSync(p Principals, d days.Repository, m client.DayMirror) *syncService {
	s := NewSyncService(p, d, m, logging.Discard()).(*syncService)
	s.now = func() time.Time { return restoreNow }
	return s
}

func seed(t *testing.T, d days.Repository, entries ...models.Entry) {
	t.Helper()
	m := models.EntryMap{}
	for _, e := range entries {
		m[e.Date] = e
	}
	require.NoError(t, d.SaveAll(context.Background(), m))
}

func load(t *testing.T, d days.Repository) models.EntryMap {
	t.Helper()
	m, err := d.LoadAll(context.Background())
	require.NoError(t, err)
	return m
}

func withMood(date, mood string) models.Entry {
	e := models.NewEntry(date, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	e.Mood = &mood
	return e
}

// ---- SaveDay ----

func TestSaveDay_FirstWriteStampsCreatedAtEqualToUpdatedAt(t *testing.T) {
	d := setupDays(t)
	m := newFakeMirror()
	seed(t, d, withMood("2024-01-01", "ok"))
	s := newSync(durable("U1"), d, m)
	ctx := context.Background()

	res, err := s.SaveDay(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	first := m.days["U1"]["2024-01-01"]
	require.False(t, first.createdAt.IsZero())
	assert.Equal(t, first.createdAt, first.updatedAt)
	assert.Equal(t, "ok", first.doc[mirror.FieldMood])
	assert.Equal(t, []any{}, first.doc[mirror.FieldNotes])

	_, err = s.SaveDay(ctx, "2024-01-01")
	require.NoError(t, err)

	second := m.days["U1"]["2024-01-01"]
	assert.Equal(t, first.createdAt, second.createdAt)
	assert.True(t, second.updatedAt.After(first.updatedAt))
	assert.Equal(t, first.doc, second.doc)
}

func TestSaveDay_CreatedAtSurvivesRepeatedSaves(t *testing.T) {
	d := setupDays(t)
	m := newFakeMirror()
	seed(t, d, withMood("2024-01-01", "ok"))
	s := newSync(durable("U1"), d, m)

	_, err := s.SaveDay(context.Background(), "2024-01-01")
	require.NoError(t, err)
	created := m.days["U1"]["2024-01-01"].createdAt

	for i := 0; i < 5; i++ {
		_, err := s.SaveDay(context.Background(), "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, created, m.days["U1"]["2024-01-01"].createdAt)
	}
	assert.Len(t, m.days["U1"], 1)
}

func TestSaveDay_SkipsAbsentDate(t *testing.T) {
	d := setupDays(t)
	m := newFakeMirror()
	seed(t, d, withMood("2024-01-01", "ok"))
	s := newSync(durable("U1"), d, m)

	res, err := s.SaveDay(context.Background(), "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, SaveResult{Skipped: true, Reason: ReasonNoLocalEntry}, res)
	assert.Empty(t, m.upserts)
	assert.Empty(t, m.days)
}

func TestSaveDay_TransportErrorsSurface(t *testing.T) {
	d := setupDays(t)
	seed(t, d, withMood("2024-01-01", "ok"))

	m := newFakeMirror()
	m.existsErr = &common.TransportError{Op: "exists", Err: client.ErrUnavailable}
	_, err := newSync(durable("U1"), d, m).SaveDay(context.Background(), "2024-01-01")
	var te *common.TransportError
	require.True(t, errors.As(err, &te))
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Empty(t, m.upserts)

	m = newFakeMirror()
	m.upsertErr["2024-01-01"] = &common.TransportError{Op: "upsert", Err: client.ErrUnauthorized}
	_, err = newSync(durable("U1"), d, m).SaveDay(context.Background(), "2024-01-01")
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestSaveDay_UnreadableStoreSkips(t *testing.T) {
	m := newFakeMirror()
	s := newSync(durable("U1"), &failingDays{loadErr: errors.New("corrupt")}, m)

	res, err := s.SaveDay(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Zero(t, m.calls())
}

// ---- preconditions ----

func TestDurablePrecondition_NoNetworkForAnonymous(t *testing.T) {
	d := setupDays(t)
	seed(t, d, withMood("2024-01-01", "ok"))
	m := newFakeMirror()
	m.put("U1", "2024-01-01", map[string]any{"mood": "x"})
	s := newSync(anonymous("U1"), d, m)
	ctx := context.Background()

	_, err := s.SaveDay(ctx, "2024-01-01")
	require.ErrorIs(t, err, common.ErrIdentity)
	require.ErrorIs(t, err, common.ErrAnonymousPrincipal)

	_, err = s.BackupAll(ctx)
	require.ErrorIs(t, err, common.ErrAnonymousPrincipal)

	_, err = s.RestoreAll(ctx, Overwrite)
	require.ErrorIs(t, err, common.ErrAnonymousPrincipal)

	_, err = s.RestoreAll(ctx, PreferLocal)
	require.ErrorIs(t, err, common.ErrAnonymousPrincipal)

	assert.Zero(t, m.calls())
	assert.Equal(t, "ok", *load(t, d)["2024-01-01"].Mood)
}

func TestAllowAnonymous_PermitsSync(t *testing.T) {
	d := setupDays(t)
	seed(t, d, withMood("2024-01-01", "ok"))
	m := newFakeMirror()
	s := newSync(anonymous("U1"), d, m)

	n, err := s.BackupAll(context.Background(), AllowAnonymous())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, m.days["U1"], "2024-01-01")
}

func TestNotSignedIn_FailsEveryOperation(t *testing.T) {
	m := newFakeMirror()
	s := newSync(&fakePrincipals{}, setupDays(t), m)
	ctx := context.Background()

	_, err := s.SaveDay(ctx, "2024-01-01", AllowAnonymous())
	require.ErrorIs(t, err, common.ErrNotSignedIn)
	_, err = s.BackupAll(ctx, AllowAnonymous())
	require.ErrorIs(t, err, common.ErrNotSignedIn)
	_, err = s.RestoreAll(ctx, PreferLocal, AllowAnonymous())
	require.ErrorIs(t, err, common.ErrNotSignedIn)
	assert.Zero(t, m.calls())
}

// ---- BackupAll ----

func TestBackupAll_WritesEveryDaySequentially(t *testing.T) {
	d := setupDays(t)
	seed(t, d,
		withMood("2024-01-03", "c"),
		withMood("2024-01-01", "a"),
		withMood("2024-01-02", "b"),
	)
	m := newFakeMirror()
	s := newSync(durable("U1"), d, m)

	n, err := s.BackupAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, m.upserts)
	assert.Equal(t, 3, m.existsCalls)
}

func TestBackupAll_EmptyStore(t *testing.T) {
	m := newFakeMirror()
	n, err := newSync(durable("U1"), setupDays(t), m).BackupAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, m.calls())
}

func TestBackupAll_AbortsOnFirstFailure(t *testing.T) {
	d := setupDays(t)
	seed(t, d,
		withMood("2024-01-01", "a"),
		withMood("2024-01-02", "b"),
		withMood("2024-01-03", "c"),
	)
	m := newFakeMirror()
	boom := &common.TransportError{Op: "upsert", Err: errors.New("quota exceeded")}
	m.upsertErr["2024-01-02"] = boom
	s := newSync(durable("U1"), d, m)

	_, err := s.BackupAll(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, m.upserts)
	assert.NotContains(t, m.days["U1"], "2024-01-03")
}

func TestBackupAll_IsRepeatable(t *testing.T) {
	d := setupDays(t)
	seed(t, d, withMood("2024-01-01", "a"), withMood("2024-01-02", "b"))
	m := newFakeMirror()
	s := newSync(durable("U1"), d, m)

	_, err := s.BackupAll(context.Background())
	require.NoError(t, err)
	created := m.days["U1"]["2024-01-01"].createdAt

	n, err := s.BackupAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, m.days["U1"], 2)
	assert.Equal(t, created, m.days["U1"]["2024-01-01"].createdAt)
}

// ---- RestoreAll ----

func TestRestoreAll_OverwriteIntoEmptyStore(t *testing.T) {
	d := setupDays(t)
	m := newFakeMirror()
	doc := map[string]any{"mood": "calm", "notes": []any{map[string]any{"text": "n1"}}}
	m.put("U1", "2024-02-02", doc)
	s := newSync(durable("U1"), d, m)

	res, err := s.RestoreAll(context.Background(), Overwrite)
	require.NoError(t, err)
	assert.Equal(t, RestoreResult{RestoredCount: 1, CloudCount: 1}, res)

	local := load(t, d)
	require.Contains(t, local, "2024-02-02")
	assert.Equal(t, mirror.FromRemote("2024-02-02", doc, restoreNow), local["2024-02-02"])
}

func TestRestoreAll_PreferLocalKeepsLocalEntries(t *testing.T) {
	d := setupDays(t)
	a := withMood("2024-03-03", "A")
	a.Notes = []models.Note{{Text: "local"}}
	seed(t, d, a)

	m := newFakeMirror()
	m.put("U1", "2024-03-03", map[string]any{"mood": "B"})
	m.put("U1", "2024-03-04", map[string]any{"mood": "C"})
	s := newSync(durable("U1"), d, m)

	res, err := s.RestoreAll(context.Background(), PreferLocal)
	require.NoError(t, err)
	assert.Equal(t, RestoreResult{RestoredCount: 1, CloudCount: 2}, res)

	local := load(t, d)
	assert.Equal(t, a, local["2024-03-03"])
	assert.Equal(t, "C", *local["2024-03-04"].Mood)
}

func TestRestoreAll_OverwriteReplacesLocalEntries(t *testing.T) {
	d := setupDays(t)
	seed(t, d, withMood("2024-03-03", "A"), withMood("2024-03-05", "local only"))

	m := newFakeMirror()
	b := map[string]any{"mood": "B", "sleep": map[string]any{"hours": 6.0}}
	m.put("U1", "2024-03-03", b)
	s := newSync(durable("U1"), d, m)

	res, err := s.RestoreAll(context.Background(), Overwrite)
	require.NoError(t, err)
	assert.Equal(t, RestoreResult{RestoredCount: 1, CloudCount: 1}, res)

	local := load(t, d)
	assert.Equal(t, mirror.FromRemote("2024-03-03", b, restoreNow), local["2024-03-03"])
	assert.Equal(t, "local only", *local["2024-03-05"].Mood, "dates absent from the mirror are kept")
}

func TestRestoreAll_OverwriteIsExhaustive(t *testing.T) {
	d := setupDays(t)
	seed(t, d, withMood("2024-04-01", "x"), withMood("2024-04-02", "y"))

	m := newFakeMirror()
	cloud := map[string]map[string]any{
		"2024-04-01": {"mood": "cloud-1"},
		"2024-04-02": {"medications": "garbage"},
		"2024-04-03": {},
	}
	for date, doc := range cloud {
		m.put("U1", date, doc)
	}
	s := newSync(durable("U1"), d, m)

	_, err := s.RestoreAll(context.Background(), Overwrite)
	require.NoError(t, err)

	local := load(t, d)
	for date, doc := range cloud {
		assert.Equal(t, mirror.FromRemote(date, doc, restoreNow), local[date], date)
	}
}

func TestRestoreAll_RoundTripsABackup(t *testing.T) {
	d := setupDays(t)
	e := withMood("2024-01-01", "ok")
	e.Medications = []models.Medication{{Name: "a"}, {Name: "b"}}
	e.TimelineEvents = []models.TimelineEvent{{At: "07:00", Kind: "wake"}, {At: "23:00", Kind: "sleep"}}
	seed(t, d, e)

	m := newFakeMirror()
	s := newSync(durable("U1"), d, m)
	_, err := s.BackupAll(context.Background())
	require.NoError(t, err)

	other := setupDays(t)
	_, err = newSync(durable("U1"), other, m).RestoreAll(context.Background(), Overwrite)
	require.NoError(t, err)

	got := load(t, other)["2024-01-01"]
	want := e
	want.CreatedAt = models.FormatTimestamp(restoreNow)
	want.UpdatedAt = want.CreatedAt
	assert.Equal(t, want, got)
}

func TestRestoreAll_OnlyReadsOwnPrincipal(t *testing.T) {
	d := setupDays(t)
	m := newFakeMirror()
	m.put("U2", "2024-01-01", map[string]any{"mood": "not mine"})

	res, err := newSync(durable("U1"), d, m).RestoreAll(context.Background(), Overwrite)
	require.NoError(t, err)
	assert.Equal(t, RestoreResult{}, res)
	assert.Empty(t, load(t, d))
}

func TestRestoreAll_SkipsBadKeys(t *testing.T) {
	d := setupDays(t)
	m := newFakeMirror()
	m.put("U1", "not-a-date", map[string]any{})
	m.put("U1", "2024-01-01", map[string]any{})

	res, err := newSync(durable("U1"), d, m).RestoreAll(context.Background(), Overwrite)
	require.NoError(t, err)
	assert.Equal(t, RestoreResult{RestoredCount: 1, CloudCount: 2}, res)
	assert.Equal(t, []string{"2024-01-01"}, load(t, d).Dates())
}

func TestRestoreAll_ListFailureWritesNothing(t *testing.T) {
	d := setupDays(t)
	seed(t, d, withMood("2024-01-01", "a"))
	m := newFakeMirror()
	m.listErr = &common.TransportError{Op: "list", Err: client.ErrUnavailable}

	_, err := newSync(durable("U1"), d, m).RestoreAll(context.Background(), Overwrite)
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, "a", *load(t, d)["2024-01-01"].Mood)
}

func TestRestoreAll_SaveFailureIsIOError(t *testing.T) {
	m := newFakeMirror()
	m.put("U1", "2024-01-01", map[string]any{})
	store := &failingDays{saveErr: errors.New("read-only")}

	_, err := newSync(durable("U1"), store, m).RestoreAll(context.Background(), Overwrite)
	var ioErr *common.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "save", ioErr.Op)
}

func TestRestoreAll_UnreadableStoreWritesNothing(t *testing.T) {
	m := newFakeMirror()
	m.put("U1", "2024-01-01", map[string]any{"mood": "m"})
	store := &failingDays{loadErr: errors.New("disk gone")}

	_, err := newSync(durable("U1"), store, m).RestoreAll(context.Background(), PreferLocal)
	var ioErr *common.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "load", ioErr.Op)
	assert.Nil(t, store.saved)
	assert.Zero(t, m.lists)
}

func TestRestoreAll_CorruptRowKeepsReadableDays(t *testing.T) {
	db, d := setupDaysDB(t)
	seed(t, d, withMood("2024-01-01", "a"), withMood("2024-01-02", "b"))
	_, err := db.Exec(`INSERT INTO days VALUES ('2024-01-03', '{not json', '', '')`)
	require.NoError(t, err)

	m := newFakeMirror()
	m.put("U1", "2024-01-03", map[string]any{"mood": "from cloud"})
	m.put("U1", "2024-01-04", map[string]any{"mood": "new"})

	res, err := newSync(durable("U1"), d, m).RestoreAll(context.Background(), PreferLocal)
	require.NoError(t, err)
	assert.Equal(t, RestoreResult{RestoredCount: 2, CloudCount: 2}, res)

	local := load(t, d)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}, local.Dates())
	assert.Equal(t, "a", *local["2024-01-01"].Mood)
	assert.Equal(t, "from cloud", *local["2024-01-03"].Mood)
}

func TestRestoreAll_UnknownMode(t *testing.T) {
	m := newFakeMirror()
	_, err := newSync(durable("U1"), setupDays(t), m).RestoreAll(context.Background(), RestoreMode("merge"))
	require.Error(t, err)
	assert.Zero(t, m.calls())
}

func TestParseRestoreMode(t *testing.T) {
	got, err := ParseRestoreMode("preferLocal")
	require.NoError(t, err)
	assert.Equal(t, PreferLocal, got)

	got, err = ParseRestoreMode("overwrite")
	require.NoError(t, err)
	assert.Equal(t, Overwrite, got)

	_, err = ParseRestoreMode("both")
	require.Error(t, err)
}
