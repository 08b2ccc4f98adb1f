// Package storage holds the non-relational backends of the cloud day
// mirror: one S3 object per day, or an in-process map. Both satisfy
// days.Repository, as does the PostgreSQL repository.
package storage
