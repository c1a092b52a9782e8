// Package services implements the driving port interfaces.
// Services contain the core business logic of the legal RAG pipeline
// (ingestion, retrieval, answer synthesis, background tasks) and
// orchestrate calls to driven ports (adapters).
//
// Services never import adapters; everything external arrives through ports.
package services
