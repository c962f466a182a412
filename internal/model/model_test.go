package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaussianData(n, d int, rng *rand.Rand, scales []float64) [][]float32 {
	data := make([][]float32, n)
	for i := range data {
		row := make([]float32, d)
		for j := range row {
			row[j] = float32(rng.NormFloat64() * scales[j])
		}
		data[i] = row
	}
	return data
}

func distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func variance(values []float64) float64 {
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var out float64
	for _, v := range values {
		out += (v - mean) * (v - mean)
	}
	return out / float64(len(values)-1)
}

func TestPCA(t *testing.T) {
	rng := rand.New(rand.NewSource(30))
	// Variance concentrated in the first two axes.
	data := gaussianData(200, 5, rng, []float64{10, 5, 0.5, 0.3, 0.1})

	pca := NewPCA(2)
	embedded, err := pca.FitTransform(data)
	require.NoError(t, err)
	require.Len(t, embedded, len(data))
	require.Len(t, embedded[0], 2)

	// Component order follows explained variance.
	first := make([]float64, len(embedded))
	second := make([]float64, len(embedded))
	for i, row := range embedded {
		first[i] = float64(row[0])
		second[i] = float64(row[1])
	}
	assert.Greater(t, variance(first), variance(second))

	// Transform on the fitting data reproduces FitTransform.
	again, err := pca.Transform(data)
	require.NoError(t, err)
	for i := range again {
		for j := range again[i] {
			assert.InDelta(t, embedded[i][j], again[i][j], 1e-4)
		}
	}
}

func TestPCAErrors(t *testing.T) {
	pca := NewPCA(2)
	_, err := pca.Transform([][]float32{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.ErrorIs(t, pca.Fit(nil), ErrEmptyInput)
	assert.ErrorIs(t, pca.Fit([][]float32{{1, 2}, {3}}), ErrDimensionMismatch)
	assert.ErrorIs(t, NewPCA(5).Fit([][]float32{{1, 2}, {3, 4}}), ErrDimensionMismatch)

	rng := rand.New(rand.NewSource(31))
	data := gaussianData(20, 3, rng, []float64{1, 1, 1})
	require.NoError(t, pca.Fit(data))
	_, err = pca.Transform([][]float32{{1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRandomProjectionReproducible(t *testing.T) {
	data := gaussianData(30, 6, rand.New(rand.NewSource(32)), []float64{1, 1, 1, 1, 1, 1})

	a, err := NewRandomProjection(2, rand.New(rand.NewSource(7))).FitTransform(data)
	require.NoError(t, err)
	b, err := NewRandomProjection(2, rand.New(rand.NewSource(7))).FitTransform(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewRandomProjection(2, rand.New(rand.NewSource(8))).FitTransform(data)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestOrthoProjectionIsometry(t *testing.T) {
	// A full-rank orthonormal basis is an isometry: pairwise distances
	// must survive the projection.
	rng := rand.New(rand.NewSource(33))
	data := gaussianData(25, 4, rng, []float64{1, 2, 3, 4})

	ortho := NewOrthoProjection(4, rand.New(rand.NewSource(9)))
	embedded, err := ortho.FitTransform(data)
	require.NoError(t, err)

	for i := 0; i < len(data); i++ {
		for j := i + 1; j < len(data); j++ {
			assert.InDelta(t, distance(data[i], data[j]), distance(embedded[i], embedded[j]), 1e-3)
		}
	}
}

func TestOrthoProjectionTransform(t *testing.T) {
	rng := rand.New(rand.NewSource(34))
	data := gaussianData(30, 5, rng, []float64{1, 1, 1, 1, 1})
	held := gaussianData(10, 5, rng, []float64{1, 1, 1, 1, 1})

	ortho := NewOrthoProjection(2, rand.New(rand.NewSource(10)))
	_, err := ortho.FitTransform(data)
	require.NoError(t, err)

	out, err := ortho.Transform(held)
	require.NoError(t, err)
	require.Len(t, out, 10)
	require.Len(t, out[0], 2)

	_, err = NewOrthoProjection(2, rng).Transform(held)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestMDSPreservesPlanarDistances(t *testing.T) {
	// Points already 2-D: classical MDS into 2-D recovers the geometry up
	// to rotation and reflection, so distances are preserved exactly.
	rng := rand.New(rand.NewSource(35))
	data := gaussianData(20, 2, rng, []float64{3, 1})

	mds := NewMDS(2)
	embedded, err := mds.FitTransform(data)
	require.NoError(t, err)

	for i := 0; i < len(data); i++ {
		for j := i + 1; j < len(data); j++ {
			assert.InDelta(t, distance(data[i], data[j]), distance(embedded[i], embedded[j]), 1e-3)
		}
	}
}

func TestMDSIsFitOnly(t *testing.T) {
	var m FitTransformer = NewMDS(2)
	_, ok := m.(Transformer)
	assert.False(t, ok, "MDS must not advertise out-of-sample transform")

	for _, fitAndTransform := range []FitTransformer{NewPCA(2), NewRandomProjection(2, rand.New(rand.NewSource(1))), NewOrthoProjection(2, rand.New(rand.NewSource(1)))} {
		_, ok := fitAndTransform.(Transformer)
		assert.True(t, ok)
	}
}
