package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Principal is the identity the client currently acts as.
type Principal struct {
	ID        string
	Anonymous bool
}

// Credential is a durable email/password credential.
type Credential struct {
	Email    string
	Password []byte
}

func (c Credential) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 256)),
	)
}
