package days

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, date string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM days WHERE user_id = $1 AND date = $2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, date).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, w models.DayWrite, now time.Time) error {
	doc, err := json.Marshal(w.Document)
	if err != nil {
		return fmt.Errorf("failed to encode day %s: %w", w.Date, err)
	}

	query :=
		`INSERT INTO days (user_id, date, document, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, date) DO UPDATE SET
		   document   = EXCLUDED.document,
		   created_at = COALESCE(EXCLUDED.created_at, days.created_at),
		   updated_at = COALESCE(EXCLUDED.updated_at, days.updated_at)
		 `

	_, err = r.db.ExecContext(ctx, query, w.UserID, w.Date, string(doc),
		stamp(w.StampCreatedAt, now), stamp(w.StampUpdatedAt, now))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.DayDocument, error) {
	query :=
		`SELECT date, document, created_at, updated_at FROM days
		 WHERE user_id = $1
		 ORDER BY date
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.DayDocument, 0)
	for rows.Next() {
		var (
			d                    = models.DayDocument{UserID: userID}
			raw                  []byte
			createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(&d.Date, &raw, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := json.Unmarshal(raw, &d.Document); err != nil {
			return nil, fmt.Errorf("failed to decode day %s: %w", d.Date, err)
		}
		if createdAt.Valid {
			d.CreatedAt = &createdAt.Time
		}
		if updatedAt.Valid {
			d.UpdatedAt = &updatedAt.Time
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func stamp(requested bool, now time.Time) sql.NullTime {
	return sql.NullTime{Time: now, Valid: requested}
}
