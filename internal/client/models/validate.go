package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ClockLayout is the time-of-day format of sub-record instants.
const ClockLayout = "15:04"

func (s Sleep) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Hours, validation.Min(0.0), validation.Max(24.0)),
		validation.Field(&s.Quality, validation.Length(0, 40)),
	)
}

func (m Medication) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&m.Dose, validation.Length(0, 40)),
		validation.Field(&m.TakenAt, validation.Date(ClockLayout)),
	)
}

func (s Symptom) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 80)),
		validation.Field(&s.Severity, validation.Min(0), validation.Max(10)),
	)
}

func (n Note) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Text, validation.Required),
		validation.Field(&n.At, validation.Date(ClockLayout)),
	)
}

func (e TimelineEvent) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.At, validation.Required, validation.Date(ClockLayout)),
		validation.Field(&e.Kind, validation.Required, validation.Length(1, 40)),
	)
}
