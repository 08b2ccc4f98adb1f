// Package mirror maps journal entries to and from the document shape kept in
// the cloud day mirror. The mapping functions are total: malformed remote
// documents are coerced, never rejected.
package mirror
