// Package common contains shared constants and sentinel errors used across
// daybook components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DateKeyLayout is the calendar-date layout of a day record key.
const DateKeyLayout = "2006-01-02"
