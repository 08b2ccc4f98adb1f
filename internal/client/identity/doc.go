// Package identity tracks who the CLI acts as.
//
// A Manager moves between three states: Unauthenticated, Anonymous and
// Durable. Promotion binds a durable credential to the current anonymous
// principal and keeps its identifier, except when the credential already
// belongs to another principal: then the manager signs in as that principal
// and the working identifier changes. Data written locally under the old
// identifier is not merged into the adopted one.
//
// The session (principal and tokens) is persisted in the metadata store and
// reloaded with Restore. Subscribers are notified on every session change.
package identity
