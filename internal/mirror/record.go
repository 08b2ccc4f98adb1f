package mirror

import "github.com/dmitrijs2005/daybook/internal/client/models"

// SchemaVersion is written into every remote document.
const SchemaVersion = 1

// Document field names.
const (
	FieldSchemaVersion  = "schemaVersion"
	FieldDate           = "date"
	FieldMood           = "mood"
	FieldSleep          = "sleep"
	FieldMedications    = "medications"
	FieldSymptoms       = "symptoms"
	FieldNotes          = "notes"
	FieldTimelineEvents = "timelineEvents"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
)

// Timestamp marks a timestamp field of a write. A nil *Timestamp leaves the
// stored value untouched on a merge-write; ServerTimestamp asks the mirror to
// stamp the field with its own clock. The mirror never accepts a client time.
type Timestamp struct{ server bool }

// ServerTimestamp is the only non-nil Timestamp.
var ServerTimestamp = &Timestamp{server: true}

// RemoteDayRecord is the cloud-side representation of one entry.
type RemoteDayRecord struct {
	SchemaVersion  int
	Date           string
	Mood           *string
	Sleep          *models.Sleep
	Medications    []models.Medication
	Symptoms       []models.Symptom
	Notes          []models.Note
	TimelineEvents []models.TimelineEvent
	CreatedAt      *Timestamp
	UpdatedAt      *Timestamp
}

// RawDay is one remote document as listed from the mirror.
type RawDay struct {
	Date string
	Data map[string]any
}
