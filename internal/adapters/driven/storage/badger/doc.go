// Package badger persists background ingestion tasks in an embedded
// Badger key-value store through badgerhold.
//
// Tasks are keyed by ID and queried by state, so upload status survives a
// server restart.
package badger
