// Package services contains the application services of the daybook CLI.
//
// SyncService moves day entries between the Local Day Store and the cloud
// day mirror: SaveDay and BackupAll push local entries, RestoreAll pulls the
// mirror into the local store. JournalService edits entries in the local
// store and never talks to the mirror.
//
// Neither service locks. Callers must not run two operations of one
// service concurrently.
package services
