// Package model provides the dimensionality-reduction models whose
// embeddings the evaluation engine scores. Models are linear or spectral;
// each one advertises its capability through the interfaces below and the
// caller resolves the capability once, before evaluation.
package model

import "errors"

var (
	// ErrNotFitted is returned when Transform is called before a fit
	ErrNotFitted = errors.New("model has not been fitted")

	// ErrDimensionMismatch is returned when input dimensions disagree with the fit
	ErrDimensionMismatch = errors.New("input dimension mismatch")

	// ErrEmptyInput is returned for empty or ragged input data
	ErrEmptyInput = errors.New("empty input data")
)

// FitTransformer fits a model to data and returns the embedding of that
// same data. Every model supports this.
type FitTransformer interface {
	FitTransform(data [][]float32) ([][]float32, error)
}

// Transformer additionally maps held-out data into the fitted latent space.
// Models lacking this capability can only be evaluated on their fitting
// data, which callers must treat as a reduced-validity evaluation.
type Transformer interface {
	FitTransformer
	Transform(data [][]float32) ([][]float32, error)
}

// validate checks that data is non-empty with consistent row widths and
// returns the shared dimension.
func validate(data [][]float32) (int, error) {
	if len(data) == 0 {
		return 0, ErrEmptyInput
	}
	dim := len(data[0])
	if dim == 0 {
		return 0, ErrEmptyInput
	}
	for _, row := range data {
		if len(row) != dim {
			return 0, ErrDimensionMismatch
		}
	}
	return dim, nil
}
