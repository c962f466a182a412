package model

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// MDS is classical multidimensional scaling: it embeds points so that
// pairwise Euclidean distances are preserved as well as a linear method
// allows. MDS derives coordinates from the spectrum of the fitting data's
// Gram matrix and therefore has no out-of-sample Transform; it is the
// FitTransformer-only model in this repository.
type MDS struct {
	OutDim int
}

// NewMDS creates a classical MDS model targeting the given dimension.
func NewMDS(outDim int) *MDS {
	return &MDS{OutDim: outDim}
}

// FitTransform embeds the data via eigendecomposition of the
// double-centered squared-distance matrix.
func (m *MDS) FitTransform(data [][]float32) ([][]float32, error) {
	dim, err := validate(data)
	if err != nil {
		return nil, err
	}
	n := len(data)
	if m.OutDim < 1 || m.OutDim > dim || m.OutDim >= n {
		return nil, fmt.Errorf("%w: output dimension %d for %d points of dimension %d", ErrDimensionMismatch, m.OutDim, n, dim)
	}

	// Squared distance matrix
	sq := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var sum float64
			for d := 0; d < dim; d++ {
				diff := float64(data[i][d]) - float64(data[j][d])
				sum += diff * diff
			}
			sq.Set(i, j, sum)
			sq.Set(j, i, sum)
		}
	}

	// Double centering: B = -0.5 * J * D² * J
	rowMeans := make([]float64, n)
	var grandMean float64
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += sq.At(i, j)
		}
		rowMeans[i] = sum / float64(n)
		grandMean += sum
	}
	grandMean /= float64(n * n)

	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b := -0.5 * (sq.At(i, j) - rowMeans[i] - rowMeans[j] + grandMean)
			gram.SetSym(i, j, b)
		}
	}

	var eigen mat.EigenSym
	if ok := eigen.Factorize(gram, true); !ok {
		return nil, fmt.Errorf("mds: eigendecomposition failed")
	}
	eigenValues := eigen.Values(nil)
	var eigenVectors mat.Dense
	eigen.VectorsTo(&eigenVectors)

	indices := make([]int, len(eigenValues))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return eigenValues[indices[i]] > eigenValues[indices[j]]
	})

	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, m.OutDim)
	}
	for c := 0; c < m.OutDim; c++ {
		idx := indices[c]
		scale := eigenValues[idx]
		if scale < 0 {
			// Negative spectrum means the distances are not Euclidean
			// realizable in this dimension; drop the axis.
			scale = 0
		}
		axis := math.Sqrt(scale)
		for i := 0; i < n; i++ {
			out[i][c] = float32(eigenVectors.At(i, idx) * axis)
		}
	}
	return out, nil
}
