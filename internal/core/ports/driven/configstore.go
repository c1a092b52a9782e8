package driven

// ConfigStore edits the persisted configuration file. Keys are dotted paths
// such as "llm.provider".
type ConfigStore interface {
	// Get returns the value stored under key and whether it is set.
	Get(key string) (any, bool)

	// Set stores value under key and persists the file.
	Set(key string, value any) error

	// Unset removes key and persists the file. Unsetting a missing key is a no-op.
	Unset(key string) error

	// Keys lists the keys that are set, sorted.
	Keys() []string

	// Path returns the configuration file path.
	Path() string
}
