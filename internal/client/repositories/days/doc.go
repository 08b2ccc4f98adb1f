// Package days is the Local Day Store: the on-device persistence of journal
// entries, one row per date key.
//
// # Data Model
//
// Each row keeps the entry as a JSON payload next to its date key and
// local-clock timestamps. LoadAll returns every readable entry and logs the
// rows it had to skip. SaveAll writes the given entries inside one
// transaction, so a reader never observes a partially written map; rows it
// was not given stay untouched, including ones LoadAll could not read.
//
// Typical Usage
//
//	repo := days.NewSQLiteRepository(db, logger)
//	m, err := repo.LoadAll(ctx)
//	m["2024-01-01"] = entry
//	err = repo.SaveAll(ctx, m)
package days
