package days

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/logging"
)

// DB is a database handle that can also open transactions. *sql.DB satisfies it.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

// SQLiteRepository implements Repository on the days table.
type SQLiteRepository struct {
	db     DB
	logger logging.Logger
}

func NewSQLiteRepository(db DB, l logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, logger: l.With("module", "days")}
}

// LoadAll skips rows whose payload does not decode and returns every
// readable day. Only a failing query or scan is an error.
func (r *SQLiteRepository) LoadAll(ctx context.Context) (models.EntryMap, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, payload FROM days`)
	if err != nil {
		return nil, fmt.Errorf("failed to select days: %w", err)
	}
	defer rows.Close()

	result := make(models.EntryMap)
	for rows.Next() {
		var date, payload string
		if err := rows.Scan(&date, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan day row: %w", err)
		}

		var e models.Entry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			r.logger.Warn(ctx, "skipping undecodable day", "date", date, "error", err)
			continue
		}
		e.Date = date
		normalize(&e)
		result[date] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day rows: %w", err)
	}

	return result, nil
}

// SaveAll writes every entry of m in one transaction. Rows for dates not in m
// are left as they are.
func (r *SQLiteRepository) SaveAll(ctx context.Context, m models.EntryMap) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for date, e := range m {
			e.Date = date
			normalize(&e)
			payload, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to encode day %s: %w", date, err)
			}

			_, err = tx.ExecContext(ctx,
				`INSERT INTO days (date, payload, created_at, updated_at) VALUES (?, ?, ?, ?)
				 ON CONFLICT(date) DO UPDATE SET
				   payload = excluded.payload,
				   created_at = excluded.created_at,
				   updated_at = excluded.updated_at`,
				date, string(payload), e.CreatedAt, e.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to write day %s: %w", date, err)
			}
		}
		return nil
	})
}

func normalize(e *models.Entry) {
	if e.Medications == nil {
		e.Medications = []models.Medication{}
	}
	if e.Symptoms == nil {
		e.Symptoms = []models.Symptom{}
	}
	if e.Notes == nil {
		e.Notes = []models.Note{}
	}
	if e.TimelineEvents == nil {
		e.TimelineEvents = []models.TimelineEvent{}
	}
}
