// Package cli provides the interactive daybook command-line client.
//
// It wires configuration, the on-device journal store, the identity manager,
// the cloud mirror client and an interactive REPL. Typical flow: restore the
// persisted session, start a background connectivity watcher, then execute
// user commands.
//
// Key features:
//   - Anonymous sign-in, credential linking, sign-in and sign-out
//   - Editing a day: mood, sleep, medications, symptoms, notes, timeline events
//   - Show / List local days
//   - Save a single day, back up all days, restore from the mirror
//   - Theme and nickname preferences
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
