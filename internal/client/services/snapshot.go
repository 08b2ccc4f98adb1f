package services

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/client/repositories/days"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
)

// loadSnapshot reads the local store. An unreadable store yields an empty
// map so the journal stays usable.
func loadSnapshot(ctx context.Context, repo days.Repository, logger logging.Logger) models.EntryMap {
	m, err := repo.LoadAll(ctx)
	if err != nil {
		logger.Warn(ctx, "local day store unreadable, using empty snapshot", "error", err)
		return models.EntryMap{}
	}
	if m == nil {
		return models.EntryMap{}
	}
	return m
}

// loadForWrite reads the local store for an operation that writes back. A
// failed read is returned instead of degrading, so the write cannot replace
// days that were only unreadable.
func loadForWrite(ctx context.Context, repo days.Repository) (models.EntryMap, error) {
	m, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, &common.IOError{Op: "load", Err: err}
	}
	if m == nil {
		return models.EntryMap{}, nil
	}
	return m, nil
}

func saveSnapshot(ctx context.Context, repo days.Repository, m models.EntryMap) error {
	if err := repo.SaveAll(ctx, m); err != nil {
		return &common.IOError{Op: "save", Err: err}
	}
	return nil
}
