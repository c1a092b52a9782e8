package domain

// CollectionStats summarises one vector store collection.
type CollectionStats struct {
	// Collection is the collection name.
	Collection string `json:"collection"`

	// Chunks is the number of stored chunks.
	Chunks int `json:"chunks"`

	// Sources lists the distinct source filenames, sorted.
	Sources []string `json:"sources"`

	// Collections lists every non-empty collection in the same database,
	// when the store can tell.
	Collections []string `json:"collections,omitempty"`
}
