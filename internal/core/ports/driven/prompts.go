package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the built-in
	// default or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswer synthesizes the final answer.
	// Placeholders: {{context}}, {{question}}.
	PromptAnswer = "answer"

	// PromptSelfQuery translates a question into a query and metadata filter.
	// Placeholders: {{content_description}}, {{attributes}}, {{question}}.
	PromptSelfQuery = "self_query"
)
