// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PDFLoader: Reads page texts from a PDF file
//   - MetadataExtractor: Derives legal metadata from document and chunk text
//   - PostProcessor: Splits documents into chunks and annotates them
//   - EmbeddingService: Generates vector embeddings for chunks and questions
//   - VectorStore: Persists chunks and answers similarity queries with metadata filters
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Language model. Without it, self-query retrieval and answer synthesis are disabled.
//   - TaskStore: Background task status. Only needed by the upload path.
//   - PromptStore: Prompt overrides. Built-in templates are used otherwise.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or normaliser package
package driven
