// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. Anonymous users have neither an email nor a password
// hash until a credential is linked to them.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Anonymous    bool
	CreatedAt    time.Time
}
