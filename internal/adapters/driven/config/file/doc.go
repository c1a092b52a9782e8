// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration edited by 'legal-llm config'
//   - PromptStore: user-editable prompt templates with built-in pt-BR defaults
package file
