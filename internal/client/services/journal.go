package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/client/repositories/days"
	"github.com/dmitrijs2005/daybook/internal/logging"
)

// JournalService edits entries in the Local Day Store. An entry is created
// by the first edit of its date.
type JournalService interface {
	Get(ctx context.Context, date string) (models.Entry, bool, error)
	List(ctx context.Context) ([]models.Entry, error)
	// SetMood sets the mood of date; an empty mood clears it.
	SetMood(ctx context.Context, date, mood string) (models.Entry, error)
	// SetSleep sets the sleep of date; nil clears it.
	SetSleep(ctx context.Context, date string, sleep *models.Sleep) (models.Entry, error)
	AddMedication(ctx context.Context, date string, m models.Medication) (models.Entry, error)
	AddSymptom(ctx context.Context, date string, s models.Symptom) (models.Entry, error)
	AddNote(ctx context.Context, date string, n models.Note) (models.Entry, error)
	AddTimelineEvent(ctx context.Context, date string, ev models.TimelineEvent) (models.Entry, error)
}

type journalService struct {
	days   days.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewJournalService(daysRepo days.Repository, l logging.Logger) JournalService {
	return &journalService{days: daysRepo, logger: l.With("module", "journal"), now: time.Now}
}

func (s *journalService) Get(ctx context.Context, date string) (models.Entry, bool, error) {
	if err := models.ValidateDateKey(date); err != nil {
		return models.Entry{}, false, fmt.Errorf("invalid date: %w", err)
	}
	e, ok := loadSnapshot(ctx, s.days, s.logger)[date]
	return e, ok, nil
}

func (s *journalService) List(ctx context.Context) ([]models.Entry, error) {
	m := loadSnapshot(ctx, s.days, s.logger)
	out := make([]models.Entry, 0, len(m))
	for _, date := range m.Dates() {
		out = append(out, m[date])
	}
	return out, nil
}

func (s *journalService) SetMood(ctx context.Context, date, mood string) (models.Entry, error) {
	return s.edit(ctx, date, nil, func(e *models.Entry) {
		if mood == "" {
			e.Mood = nil
			return
		}
		e.Mood = &mood
	})
}

func (s *journalService) SetSleep(ctx context.Context, date string, sleep *models.Sleep) (models.Entry, error) {
	var v validatable
	if sleep != nil {
		v = *sleep
	}
	return s.edit(ctx, date, v, func(e *models.Entry) { e.Sleep = sleep })
}

func (s *journalService) AddMedication(ctx context.Context, date string, m models.Medication) (models.Entry, error) {
	return s.edit(ctx, date, m, func(e *models.Entry) { e.Medications = append(e.Medications, m) })
}

func (s *journalService) AddSymptom(ctx context.Context, date string, sym models.Symptom) (models.Entry, error) {
	return s.edit(ctx, date, sym, func(e *models.Entry) { e.Symptoms = append(e.Symptoms, sym) })
}

func (s *journalService) AddNote(ctx context.Context, date string, n models.Note) (models.Entry, error) {
	return s.edit(ctx, date, n, func(e *models.Entry) { e.Notes = append(e.Notes, n) })
}

func (s *journalService) AddTimelineEvent(ctx context.Context, date string, ev models.TimelineEvent) (models.Entry, error) {
	return s.edit(ctx, date, ev, func(e *models.Entry) { e.TimelineEvents = append(e.TimelineEvents, ev) })
}

type validatable interface {
	Validate() error
}

// edit validates the input, applies fn to the entry of date (creating it
// when absent) and writes that entry back.
func (s *journalService) edit(ctx context.Context, date string, in validatable, fn func(*models.Entry)) (models.Entry, error) {
	if err := models.ValidateDateKey(date); err != nil {
		return models.Entry{}, fmt.Errorf("invalid date: %w", err)
	}
	if in != nil {
		if err := in.Validate(); err != nil {
			return models.Entry{}, fmt.Errorf("invalid input: %w", err)
		}
	}

	m, err := loadForWrite(ctx, s.days)
	if err != nil {
		return models.Entry{}, err
	}

	now := s.now()
	e, ok := m[date]
	if !ok {
		e = models.NewEntry(date, now)
	}
	fn(&e)
	e.Touch(now)

	if err := saveSnapshot(ctx, s.days, models.EntryMap{date: e}); err != nil {
		return models.Entry{}, err
	}
	s.logger.Debug(ctx, "entry updated", "date", date, "created", !ok)
	return e, nil
}
