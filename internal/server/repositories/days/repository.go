// Package days stores mirrored journal days in PostgreSQL.
package days

import (
	"context"
	"time"

	"github.com/dmitrijs2005/daybook/internal/server/models"
)

// Repository is the storage contract of the cloud day mirror. Every
// backend (PostgreSQL, S3, memory) implements it.
type Repository interface {
	Exists(ctx context.Context, userID, date string) (bool, error)
	// Upsert merge-writes w. Stamped fields are set to now; unstamped
	// fields keep their stored value.
	Upsert(ctx context.Context, w models.DayWrite, now time.Time) error
	// List returns every day of userID ordered by date.
	List(ctx context.Context, userID string) ([]models.DayDocument, error)
}
