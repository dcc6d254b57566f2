package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts, one per input. Returns an error if any embedding
	// generation fails; there are no partial results.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// KeywordLabeler produces short topic keywords for a group of titles.
// Implementations must be thread-safe for concurrent use.
type KeywordLabeler interface {
	// Keywords asks a language model for topic keywords describing the given
	// titles. A response that cannot be parsed into a list of strings yields
	// an empty (non-nil) list and no error; errors are reserved for
	// transport-level failures.
	Keywords(ctx context.Context, titles []string) ([]string, error)
}
