package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/server/metrics"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/days"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DayService serves the per-user cloud day mirror over any days.Repository
// backend. Timestamps are stamped with the server clock.
type DayService struct {
	store   days.Repository
	metrics *metrics.Metrics
	logger  logging.Logger
	now     func() time.Time
}

func NewDayService(store days.Repository, mt *metrics.Metrics, l logging.Logger) *DayService {
	return &DayService{
		store:   store,
		metrics: mt,
		logger:  l.With("module", "days"),
		now:     time.Now,
	}
}

func validateDate(date string) error {
	if err := validation.Validate(date, validation.Required, validation.Date(common.DateKeyLayout)); err != nil {
		return fmt.Errorf("%w: %q", common.ErrInvalidDate, date)
	}
	return nil
}

func (s *DayService) Exists(ctx context.Context, userID, date string) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	ok, err := s.store.Exists(ctx, userID, date)
	if err != nil {
		return false, fmt.Errorf("error checking day: %w", err)
	}
	return ok, nil
}

// Upsert merge-writes one day. Only the stamps requested in w are moved to
// the current server time.
func (s *DayService) Upsert(ctx context.Context, w models.DayWrite) error {
	if err := validateDate(w.Date); err != nil {
		return err
	}
	if w.Document == nil {
		w.Document = map[string]any{}
	}

	err := s.store.Upsert(ctx, w, s.now().UTC())
	s.metrics.DayWrite(err)
	if err != nil {
		s.logger.Error(ctx, "day upsert failed", "user_id", w.UserID, "date", w.Date, "error", err)
		return fmt.Errorf("error writing day: %w", err)
	}

	s.logger.Debug(ctx, "day upserted", "user_id", w.UserID, "date", w.Date,
		"stamp_created", w.StampCreatedAt, "stamp_updated", w.StampUpdatedAt)
	return nil
}

// List returns every stored day of userID ordered by date.
func (s *DayService) List(ctx context.Context, userID string) ([]models.DayDocument, error) {
	out, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing days: %w", err)
	}
	s.metrics.DaysListed(len(out))
	s.logger.Info(ctx, "days listed", "user_id", userID, "count", len(out))
	return out, nil
}
