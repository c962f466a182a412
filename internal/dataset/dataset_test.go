package dataset

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	ds := Grid(10)
	assert.Equal(t, 100, ds.Len())
	assert.Equal(t, 2, ds.Dim())
	assert.Equal(t, []float32{0, 0}, ds.Data[0])
	assert.Equal(t, []float32{9, 9}, ds.Data[99])
}

func TestUniform(t *testing.T) {
	ds := Uniform(50, 7, rand.New(rand.NewSource(1)))
	assert.Equal(t, 50, ds.Len())
	assert.Equal(t, 7, ds.Dim())
	for _, row := range ds.Data {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.Less(t, v, float32(1))
		}
	}
}

func TestSpheres(t *testing.T) {
	cfg := SpheresConfig{
		InnerSpheres:     3,
		SamplesPerSphere: 40,
		Dim:              10,
		Radius:           5,
		EnclosingFactor:  5,
		EnclosingSamples: 100,
	}
	ds := Spheres(cfg, rand.New(rand.NewSource(2)))

	require.Equal(t, 3*40+100, ds.Len())
	assert.Equal(t, 10, ds.Dim())

	counts := make(map[int]int)
	for _, label := range ds.Labels {
		counts[label]++
	}
	assert.Equal(t, 40, counts[0])
	assert.Equal(t, 40, counts[2])
	assert.Equal(t, 100, counts[3])

	// Enclosing-sphere samples sit on a radius-25 shell around the origin.
	for i, label := range ds.Labels {
		if label != 3 {
			continue
		}
		var norm float64
		for _, v := range ds.Data[i] {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 25.0, math.Sqrt(norm), 1e-3)
	}
}

func TestSplit(t *testing.T) {
	ds := Grid(10)

	train, val, err := Split(ds, 0.2, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, 20, val.Len())
	assert.Equal(t, 80, train.Len())

	// Disjoint and exhaustive over the grid's distinct points.
	seen := make(map[[2]float32]int)
	for _, row := range train.Data {
		seen[[2]float32{row[0], row[1]}]++
	}
	for _, row := range val.Data {
		seen[[2]float32{row[0], row[1]}]++
	}
	assert.Len(t, seen, 100)
	for point, count := range seen {
		assert.Equal(t, 1, count, "point %v assigned more than once", point)
	}

	// Same seed, same partition.
	train2, val2, err := Split(ds, 0.2, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, train.Data, train2.Data)
	assert.Equal(t, val.Labels, val2.Labels)
}

func TestSplitErrors(t *testing.T) {
	ds := Grid(4)
	_, _, err := Split(ds, 0, rand.New(rand.NewSource(4)))
	assert.ErrorIs(t, err, ErrBadSplit)
	_, _, err = Split(ds, 1.5, rand.New(rand.NewSource(4)))
	assert.ErrorIs(t, err, ErrBadSplit)
	_, _, err = Split(&Dataset{}, 0.5, rand.New(rand.NewSource(4)))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
