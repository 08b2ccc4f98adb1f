package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/client/repositories/days"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/mirror"
)

// ReasonNoLocalEntry marks a SaveDay that found nothing to write.
const ReasonNoLocalEntry = "no-local-entry"

type RestoreMode string

const (
	// PreferLocal keeps every local entry and only fills gaps from the mirror.
	PreferLocal RestoreMode = "preferLocal"
	// Overwrite replaces local entries with their mirror copy.
	Overwrite RestoreMode = "overwrite"
)

func ParseRestoreMode(s string) (RestoreMode, error) {
	switch m := RestoreMode(s); m {
	case PreferLocal, Overwrite:
		return m, nil
	default:
		return "", fmt.Errorf("unknown restore mode %q", s)
	}
}

type SaveResult struct {
	Skipped bool
	Reason  string
}

type RestoreResult struct {
	// RestoredCount is the number of local entries added or replaced.
	RestoredCount int
	// CloudCount is the number of mirror documents seen.
	CloudCount int
}

// Principals resolves the principal a sync operation acts for.
type Principals interface {
	RequireDurable(requireDurable bool) (models.Principal, error)
}

type syncOptions struct {
	requireDurable bool
}

type SyncOption func(*syncOptions)

// AllowAnonymous lets an anonymous principal sync.
func AllowAnonymous() SyncOption {
	return func(o *syncOptions) { o.requireDurable = false }
}

func buildOptions(opts []SyncOption) syncOptions {
	o := syncOptions{requireDurable: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SyncService synchronizes the Local Day Store with the cloud day mirror.
// Merging is per day: a day is written or replaced as a whole.
type SyncService interface {
	// SaveDay pushes the local entry of date to the mirror. A date without a
	// local entry is skipped and nothing is written.
	SaveDay(ctx context.Context, date string, opts ...SyncOption) (SaveResult, error)
	// BackupAll pushes every local entry, one at a time, and returns the
	// number written. It stops at the first failure; the count is then
	// meaningless and some days may already have been written.
	BackupAll(ctx context.Context, opts ...SyncOption) (int, error)
	// RestoreAll merges the whole mirror into the local store and saves the
	// restored days in one write. It fails without writing when the local
	// store cannot be read.
	RestoreAll(ctx context.Context, mode RestoreMode, opts ...SyncOption) (RestoreResult, error)
}

type syncService struct {
	identity Principals
	days     days.Repository
	mirror   client.DayMirror
	logger   logging.Logger
	now      func() time.Time
}

func NewSyncService(identity Principals, daysRepo days.Repository, m client.DayMirror, l logging.Logger) SyncService {
	return &syncService{
		identity: identity,
		days:     daysRepo,
		mirror:   m,
		logger:   l.With("module", "sync"),
		now:      time.Now,
	}
}

func (s *syncService) SaveDay(ctx context.Context, date string, opts ...SyncOption) (SaveResult, error) {
	o := buildOptions(opts)
	p, err := s.identity.RequireDurable(o.requireDurable)
	if err != nil {
		return SaveResult{}, err
	}

	local := loadSnapshot(ctx, s.days, s.logger)
	return s.saveDay(ctx, p, local, date)
}

func (s *syncService) saveDay(ctx context.Context, p models.Principal, local models.EntryMap, date string) (SaveResult, error) {
	e, ok := local[date]
	if !ok {
		s.logger.Debug(ctx, "nothing to save", "principal", p.ID, "date", date)
		return SaveResult{Skipped: true, Reason: ReasonNoLocalEntry}, nil
	}

	exists, err := s.mirror.Exists(ctx, p.ID, date)
	if err != nil {
		return SaveResult{}, fmt.Errorf("check remote day %s: %w", date, err)
	}

	rec := mirror.ToRemote(e)
	rec.UpdatedAt = mirror.ServerTimestamp
	if !exists {
		// createdAt is stamped once; later writes leave it alone
		rec.CreatedAt = mirror.ServerTimestamp
	}

	if err := s.mirror.Upsert(ctx, p.ID, date, rec); err != nil {
		return SaveResult{}, fmt.Errorf("upsert remote day %s: %w", date, err)
	}

	s.logger.Debug(ctx, "day saved", "principal", p.ID, "date", date, "created", !exists)
	return SaveResult{}, nil
}

func (s *syncService) BackupAll(ctx context.Context, opts ...SyncOption) (int, error) {
	o := buildOptions(opts)
	p, err := s.identity.RequireDurable(o.requireDurable)
	if err != nil {
		return 0, err
	}

	local := loadSnapshot(ctx, s.days, s.logger)

	written := 0
	for _, date := range local.Dates() {
		res, err := s.saveDay(ctx, p, local, date)
		if err != nil {
			s.logger.Error(ctx, "backup aborted", "principal", p.ID, "date", date, "error", err)
			return written, err
		}
		if !res.Skipped {
			written++
		}
	}

	s.logger.Info(ctx, "backup finished", "principal", p.ID, "written", written)
	return written, nil
}

func (s *syncService) RestoreAll(ctx context.Context, mode RestoreMode, opts ...SyncOption) (RestoreResult, error) {
	if _, err := ParseRestoreMode(string(mode)); err != nil {
		return RestoreResult{}, err
	}

	o := buildOptions(opts)
	p, err := s.identity.RequireDurable(o.requireDurable)
	if err != nil {
		return RestoreResult{}, err
	}

	local, err := loadForWrite(ctx, s.days)
	if err != nil {
		return RestoreResult{}, err
	}

	docs, err := s.mirror.ListAll(ctx, p.ID)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("list remote days: %w", err)
	}

	restored := models.EntryMap{}
	now := s.now()
	for _, doc := range docs {
		if err := models.ValidateDateKey(doc.Date); err != nil {
			s.logger.Warn(ctx, "skipping remote day with bad key", "principal", p.ID, "date", doc.Date)
			continue
		}
		if mode == PreferLocal {
			if _, ok := local[doc.Date]; ok {
				continue
			}
		}
		restored[doc.Date] = mirror.FromRemote(doc.Date, doc.Data, now)
	}

	if err := saveSnapshot(ctx, s.days, restored); err != nil {
		return RestoreResult{}, err
	}

	res := RestoreResult{RestoredCount: len(restored), CloudCount: len(docs)}
	s.logger.Info(ctx, "restore finished", "principal", p.ID, "mode", string(mode),
		"restored", res.RestoredCount, "cloud", res.CloudCount)
	return res, nil
}
