// Package normalisers turns uploaded files into page text.
// The pdf subpackage is the only format legal-llm ingests.
package normalisers
