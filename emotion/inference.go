package emotion

import "context"

// InferenceAdapter returns per-label scores for a text. It is the only contact
// point with the classifier model.
type InferenceAdapter interface {
	Infer(ctx context.Context, text string) (ScoreVector, error)
}

// InferenceFunc adapts a plain function to InferenceAdapter.
type InferenceFunc func(ctx context.Context, text string) (ScoreVector, error)

// Infer calls f.
func (f InferenceFunc) Infer(ctx context.Context, text string) (ScoreVector, error) {
	return f(ctx, text)
}
