// Package metadata is a small key/value store in the on-device database. The
// CLI keeps its session and settings here.
package metadata
