package days

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/client/models"
)

// Repository is the snapshot contract of the Local Day Store.
type Repository interface {
	// LoadAll returns every readable entry keyed by date.
	LoadAll(ctx context.Context) (models.EntryMap, error)

	// SaveAll atomically writes the entries of m. Entries are never deleted.
	SaveAll(ctx context.Context, m models.EntryMap) error
}
