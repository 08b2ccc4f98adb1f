package mirror

import (
	"encoding/json"
	"math"
	"time"

	"github.com/dmitrijs2005/daybook/internal/client/models"
)

// ToRemote copies the known fields of e. Absent mood and sleep stay unset,
// absent sequences become empty. Timestamps are left for the caller.
func ToRemote(e models.Entry) RemoteDayRecord {
	return RemoteDayRecord{
		SchemaVersion:  SchemaVersion,
		Date:           e.Date,
		Mood:           e.Mood,
		Sleep:          e.Sleep,
		Medications:    orEmpty(e.Medications),
		Symptoms:       orEmpty(e.Symptoms),
		Notes:          orEmpty(e.Notes),
		TimelineEvents: orEmpty(e.TimelineEvents),
	}
}

// Document renders the persisted data fields of r. Unset mood and sleep are
// written as explicit nulls. Timestamps are not part of the document, they
// travel with the write request.
func (r RemoteDayRecord) Document() map[string]any {
	doc := map[string]any{
		FieldSchemaVersion:  r.SchemaVersion,
		FieldDate:           r.Date,
		FieldMood:           nil,
		FieldSleep:          nil,
		FieldMedications:    toList(r.Medications),
		FieldSymptoms:       toList(r.Symptoms),
		FieldNotes:          toList(r.Notes),
		FieldTimelineEvents: toList(r.TimelineEvents),
	}
	if r.Mood != nil {
		doc[FieldMood] = *r.Mood
	}
	if r.Sleep != nil {
		doc[FieldSleep] = toObject(r.Sleep)
	}
	return doc
}

// FromRemote rebuilds a local entry for dateKey from a raw remote document.
// Both timestamps are set to now in the local convention; remote timestamps
// are ignored.
func FromRemote(dateKey string, raw map[string]any, now time.Time) models.Entry {
	ts := models.FormatTimestamp(now)
	e := models.Entry{
		Date:           dateKey,
		Medications:    listOf(raw[FieldMedications], medicationFrom),
		Symptoms:       listOf(raw[FieldSymptoms], symptomFrom),
		Notes:          listOf(raw[FieldNotes], noteFrom),
		TimelineEvents: listOf(raw[FieldTimelineEvents], timelineEventFrom),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if mood, ok := raw[FieldMood].(string); ok {
		e.Mood = &mood
	}
	if obj, ok := raw[FieldSleep].(map[string]any); ok {
		e.Sleep = &models.Sleep{Hours: num(obj["hours"]), Quality: str(obj["quality"])}
	}
	return e
}

func medicationFrom(obj map[string]any) models.Medication {
	return models.Medication{Name: str(obj["name"]), Dose: str(obj["dose"]), TakenAt: str(obj["takenAt"])}
}

func symptomFrom(obj map[string]any) models.Symptom {
	return models.Symptom{Name: str(obj["name"]), Severity: integer(obj["severity"])}
}

func noteFrom(obj map[string]any) models.Note {
	return models.Note{Text: str(obj["text"]), At: str(obj["at"])}
}

func timelineEventFrom(obj map[string]any) models.TimelineEvent {
	return models.TimelineEvent{At: str(obj["at"]), Kind: str(obj["kind"]), Description: str(obj["description"])}
}

// str, num and integer read one field; a value of the wrong type reads as zero.
func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func integer(v any) int {
	f := num(v)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// listOf builds a record from every object element of v. Elements that are
// not objects are dropped; anything that is not a list yields an empty slice.
func listOf[T any](v any, build func(map[string]any) T) []T {
	out := []T{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, build(obj))
		}
	}
	return out
}

func toList[T any](s []T) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, toObject(v))
	}
	return out
}

func toObject(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}
