// Package dataset provides the point sets the experiment runner feeds to
// models: synthetic benchmarks generated from an explicit random source and
// CSV-backed datasets loaded through a memoizing loader.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrEmptyDataset is returned for datasets without samples
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrBadSplit is returned for split fractions outside (0, 1)
	ErrBadSplit = errors.New("split fraction outside (0, 1)")
)

// Dataset is an ordered set of fixed-length real-valued samples with
// index-aligned class labels.
type Dataset struct {
	Data   [][]float32
	Labels []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Data)
}

// Dim returns the sample dimension, 0 for an empty dataset.
func (d *Dataset) Dim() int {
	if len(d.Data) == 0 {
		return 0
	}
	return len(d.Data[0])
}

// Split partitions the dataset into disjoint train and validation subsets.
// The validation subset holds round(valFraction·N) samples chosen by the
// supplied random source; sample/label alignment is preserved.
func Split(ds *Dataset, valFraction float64, rng *rand.Rand) (*Dataset, *Dataset, error) {
	if ds.Len() == 0 {
		return nil, nil, ErrEmptyDataset
	}
	if valFraction <= 0 || valFraction >= 1 {
		return nil, nil, fmt.Errorf("%w: %f", ErrBadSplit, valFraction)
	}

	n := ds.Len()
	valSize := int(float64(n)*valFraction + 0.5)
	if valSize == 0 {
		valSize = 1
	}
	if valSize == n {
		valSize = n - 1
	}

	perm := rng.Perm(n)
	val := &Dataset{
		Data:   make([][]float32, 0, valSize),
		Labels: make([]int, 0, valSize),
	}
	train := &Dataset{
		Data:   make([][]float32, 0, n-valSize),
		Labels: make([]int, 0, n-valSize),
	}
	for i, idx := range perm {
		if i < valSize {
			val.Data = append(val.Data, ds.Data[idx])
			val.Labels = append(val.Labels, ds.Labels[idx])
		} else {
			train.Data = append(train.Data, ds.Data[idx])
			train.Labels = append(train.Labels, ds.Labels[idx])
		}
	}
	return train, val, nil
}

// Grid returns a deterministic side×side planar grid with unit spacing.
// Useful as a fixture whose neighborhood structure is known exactly.
func Grid(side int) *Dataset {
	ds := &Dataset{
		Data:   make([][]float32, 0, side*side),
		Labels: make([]int, 0, side*side),
	}
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			ds.Data = append(ds.Data, []float32{float32(x), float32(y)})
			ds.Labels = append(ds.Labels, y)
		}
	}
	return ds
}

// Uniform returns n samples drawn uniformly from the d-dimensional unit
// cube, all labeled 0.
func Uniform(n, d int, rng *rand.Rand) *Dataset {
	ds := &Dataset{
		Data:   make([][]float32, n),
		Labels: make([]int, n),
	}
	for i := 0; i < n; i++ {
		row := make([]float32, d)
		for j := range row {
			row[j] = float32(rng.Float64())
		}
		ds.Data[i] = row
	}
	return ds
}
