package models

import "time"

// DayDocument is one stored day of a user's journal. Document holds the
// client's fields verbatim; CreatedAt and UpdatedAt are stamped by the server.
type DayDocument struct {
	UserID    string
	Date      string
	Document  map[string]any
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// DayWrite is a merge-write of one day. A false stamp flag keeps the stored
// value of that field.
type DayWrite struct {
	UserID         string
	Date           string
	Document       map[string]any
	StampCreatedAt bool
	StampUpdatedAt bool
}
