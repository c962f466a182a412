package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RandomProjection maps data through a fixed Gaussian random matrix drawn
// from the caller-supplied source at fit time.
type RandomProjection struct {
	OutDim int

	rng      *rand.Rand
	weights  *mat.Dense // inputDim × OutDim
	inputDim int
}

// NewRandomProjection creates a random projection model. The random source
// is explicit so embeddings are reproducible for a given seed.
func NewRandomProjection(outDim int, rng *rand.Rand) *RandomProjection {
	return &RandomProjection{OutDim: outDim, rng: rng}
}

// Fit draws the projection matrix for the data's dimension.
func (r *RandomProjection) Fit(data [][]float32) error {
	dim, err := validate(data)
	if err != nil {
		return err
	}
	if r.OutDim < 1 {
		return fmt.Errorf("%w: output dimension %d", ErrDimensionMismatch, r.OutDim)
	}

	weights := mat.NewDense(dim, r.OutDim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < r.OutDim; j++ {
			weights.Set(i, j, r.rng.NormFloat64())
		}
	}
	r.weights = weights
	r.inputDim = dim
	return nil
}

// FitTransform fits the model and returns the embedding of the fitting data.
func (r *RandomProjection) FitTransform(data [][]float32) ([][]float32, error) {
	if err := r.Fit(data); err != nil {
		return nil, err
	}
	return r.Transform(data)
}

// Transform projects data through the fitted matrix.
func (r *RandomProjection) Transform(data [][]float32) ([][]float32, error) {
	if r.weights == nil {
		return nil, ErrNotFitted
	}
	return applyProjection(data, r.weights, r.inputDim)
}

// OrthoProjection is a random linear projection whose columns are
// orthonormalized by QR factorization, so the map preserves distances along
// the retained directions.
type OrthoProjection struct {
	OutDim int

	rng      *rand.Rand
	weights  *mat.Dense // inputDim × OutDim, orthonormal columns
	inputDim int
}

// NewOrthoProjection creates an orthogonally-constrained projection model.
func NewOrthoProjection(outDim int, rng *rand.Rand) *OrthoProjection {
	return &OrthoProjection{OutDim: outDim, rng: rng}
}

// Fit draws a Gaussian matrix and orthonormalizes its columns.
func (o *OrthoProjection) Fit(data [][]float32) error {
	dim, err := validate(data)
	if err != nil {
		return err
	}
	if o.OutDim < 1 || o.OutDim > dim {
		return fmt.Errorf("%w: output dimension %d for input dimension %d", ErrDimensionMismatch, o.OutDim, dim)
	}

	raw := mat.NewDense(dim, o.OutDim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < o.OutDim; j++ {
			raw.Set(i, j, o.rng.NormFloat64())
		}
	}

	var qr mat.QR
	qr.Factorize(raw)
	var q mat.Dense
	qr.QTo(&q)

	weights := mat.NewDense(dim, o.OutDim, nil)
	for j := 0; j < o.OutDim; j++ {
		weights.SetCol(j, mat.Col(nil, j, &q))
	}
	o.weights = weights
	o.inputDim = dim
	return nil
}

// FitTransform fits the model and returns the embedding of the fitting data.
func (o *OrthoProjection) FitTransform(data [][]float32) ([][]float32, error) {
	if err := o.Fit(data); err != nil {
		return nil, err
	}
	return o.Transform(data)
}

// Transform projects data through the orthonormal basis.
func (o *OrthoProjection) Transform(data [][]float32) ([][]float32, error) {
	if o.weights == nil {
		return nil, ErrNotFitted
	}
	return applyProjection(data, o.weights, o.inputDim)
}

func applyProjection(data [][]float32, weights *mat.Dense, inputDim int) ([][]float32, error) {
	dim, err := validate(data)
	if err != nil {
		return nil, err
	}
	if dim != inputDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, dim, inputDim)
	}

	_, outDim := weights.Dims()
	out := make([][]float32, len(data))
	for i, row := range data {
		projected := make([]float32, outDim)
		for j := 0; j < outDim; j++ {
			var sum float64
			for d := 0; d < dim; d++ {
				sum += float64(row[d]) * weights.At(d, j)
			}
			projected[j] = float32(sum)
		}
		out[i] = projected
	}
	return out, nil
}
