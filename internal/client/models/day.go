// Package models defines client-side data models used by the daybook CLI:
// day entries, their sub-records, and the signed-in principal.
package models

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TimestampLayout renders local-clock instants the way entries store them.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Sleep is the sleep observation of one night.
type Sleep struct {
	Hours   float64 `json:"hours"`
	Quality string  `json:"quality,omitempty"`
}

type Medication struct {
	Name    string `json:"name"`
	Dose    string `json:"dose,omitempty"`
	TakenAt string `json:"takenAt,omitempty"`
}

type Symptom struct {
	Name     string `json:"name"`
	Severity int    `json:"severity,omitempty"`
}

type Note struct {
	Text string `json:"text"`
	At   string `json:"at,omitempty"`
}

type TimelineEvent struct {
	At          string `json:"at"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// Entry is one calendar day of the journal. Date is the identity key and
// never changes after creation. Sequence fields keep chronological order.
type Entry struct {
	Date           string          `json:"date"`
	Mood           *string         `json:"mood,omitempty"`
	Sleep          *Sleep          `json:"sleep,omitempty"`
	Medications    []Medication    `json:"medications"`
	Symptoms       []Symptom       `json:"symptoms"`
	Notes          []Note          `json:"notes"`
	TimelineEvents []TimelineEvent `json:"timelineEvents"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

// NewEntry returns an empty entry for date stamped with now.
func NewEntry(date string, now time.Time) Entry {
	ts := FormatTimestamp(now)
	return Entry{
		Date:           date,
		Medications:    []Medication{},
		Symptoms:       []Symptom{},
		Notes:          []Note{},
		TimelineEvents: []TimelineEvent{},
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
}

// Touch stamps UpdatedAt with now.
func (e *Entry) Touch(now time.Time) {
	e.UpdatedAt = FormatTimestamp(now)
}

// EntryMap maps a date key to its entry.
type EntryMap map[string]Entry

// Dates returns the keys in ascending order.
func (m EntryMap) Dates() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ValidateDateKey checks that date is a YYYY-MM-DD calendar date.
func ValidateDateKey(date string) error {
	return validation.Validate(date,
		validation.Required,
		validation.Date(common.DateKeyLayout).Error("must be a YYYY-MM-DD date"),
	)
}
