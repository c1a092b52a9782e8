// Package sqlite provides the persistent vector store on top of SQLite.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Chunks are kept in a single table partitioned by
// collection name; embeddings are stored as little-endian float32 blobs and
// chunk metadata as a JSON object.
//
// # Filtering
//
// Metadata filters are translated to SQL over json_extract so only matching
// rows leave the database. Cosine similarity is computed in Go over the
// filtered candidates.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files and applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.legal-llm/data/vectors.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store runs SQLite in WAL
// mode so readers do not block the writer.
package sqlite
