package embed

import "context"

// Embedder maps text to fixed-length vectors. One call may embed many texts;
// the result has one vector per input, in input order, all of the provider's
// fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
