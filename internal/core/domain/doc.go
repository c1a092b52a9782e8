// Package domain defines the core business entities for legal-llm.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded law or decree PDF and its extracted text
//   - Chunk: An overlapping slice of a document, the unit stored in the vector store
//   - Filter: A structured metadata predicate used by self-query retrieval
//   - Answer: A synthesized answer plus the sources it was drawn from
//   - Task: A background ingestion job and its result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
