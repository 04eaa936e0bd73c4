package engine

import "context"

// Evaluator decides whether a caller holding granted permissions may perform an
// action that needs all of required.
type Evaluator interface {
	Allow(ctx context.Context, granted, required []string) (bool, error)
}
