package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// PCA projects data onto its leading principal components. It supports
// out-of-sample Transform using the means and components learned at fit
// time.
type PCA struct {
	// Components is the number of principal components to keep.
	Components int

	means      []float64
	projection *mat.Dense // cols × Components
	inputDim   int
}

// NewPCA creates a PCA model targeting the given latent dimension.
func NewPCA(components int) *PCA {
	return &PCA{Components: components}
}

// Fit learns the component basis from data.
func (p *PCA) Fit(data [][]float32) error {
	dim, err := validate(data)
	if err != nil {
		return err
	}
	if p.Components < 1 || p.Components > dim {
		return fmt.Errorf("%w: %d components for dimension %d", ErrDimensionMismatch, p.Components, dim)
	}
	rows := len(data)
	if rows < 2 {
		return fmt.Errorf("%w: need at least 2 samples", ErrEmptyInput)
	}

	X := toDense(data)

	// Center the data
	means := make([]float64, dim)
	for j := 0; j < dim; j++ {
		col := mat.Col(nil, j, X)
		mean := 0.0
		for _, val := range col {
			mean += val
		}
		mean /= float64(rows)
		means[j] = mean
		for i := 0; i < rows; i++ {
			X.Set(i, j, X.At(i, j)-mean)
		}
	}

	// Covariance matrix
	var covDense mat.Dense
	covDense.Mul(X.T(), X)
	covDense.Scale(1/float64(rows-1), &covDense)

	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			cov.SetSym(i, j, covDense.At(i, j))
		}
	}

	var eigen mat.EigenSym
	if ok := eigen.Factorize(cov, true); !ok {
		return fmt.Errorf("pca: eigendecomposition failed")
	}

	eigenValues := eigen.Values(nil)
	var eigenVectors mat.Dense
	eigen.VectorsTo(&eigenVectors)

	// Descending eigenvalue order
	indices := make([]int, len(eigenValues))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return eigenValues[indices[i]] > eigenValues[indices[j]]
	})

	projection := mat.NewDense(dim, p.Components, nil)
	for c := 0; c < p.Components; c++ {
		projection.SetCol(c, mat.Col(nil, indices[c], &eigenVectors))
	}

	p.means = means
	p.projection = projection
	p.inputDim = dim
	return nil
}

// FitTransform fits the model and returns the embedding of the fitting data.
func (p *PCA) FitTransform(data [][]float32) ([][]float32, error) {
	if err := p.Fit(data); err != nil {
		return nil, err
	}
	return p.Transform(data)
}

// Transform projects data into the fitted component basis.
func (p *PCA) Transform(data [][]float32) ([][]float32, error) {
	if p.projection == nil {
		return nil, ErrNotFitted
	}
	dim, err := validate(data)
	if err != nil {
		return nil, err
	}
	if dim != p.inputDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, dim, p.inputDim)
	}

	out := make([][]float32, len(data))
	for i, row := range data {
		centered := make([]float64, dim)
		for j, v := range row {
			centered[j] = float64(v) - p.means[j]
		}
		projected := make([]float32, p.Components)
		for c := 0; c < p.Components; c++ {
			var sum float64
			for j := 0; j < dim; j++ {
				sum += centered[j] * p.projection.At(j, c)
			}
			projected[c] = float32(sum)
		}
		out[i] = projected
	}
	return out, nil
}

func toDense(data [][]float32) *mat.Dense {
	rows := len(data)
	cols := len(data[0])
	values := make([]float64, rows*cols)
	for i, row := range data {
		for j, v := range row {
			values[i*cols+j] = float64(v)
		}
	}
	return mat.NewDense(rows, cols, values)
}
