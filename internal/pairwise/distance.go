package pairwise

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Structure holds the derived distance and rank information for one point set.
// It is recomputed per evaluation call and never cached across calls.
type Structure struct {
	// Dist is the N×N symmetric Euclidean distance matrix with zero diagonal.
	Dist [][]float64

	// Neighbors[i] lists the other N−1 point indices ordered by ascending
	// distance to i, ties broken by ascending index.
	Neighbors [][]int

	// Rank[i][j] is the position (1-based) of j in Neighbors[i];
	// Rank[i][i] is 0.
	Rank [][]int
}

// N returns the number of points the structure was computed from.
func (s *Structure) N() int {
	return len(s.Dist)
}

// Empty reports whether the structure holds fewer than two points and thus
// carries no usable distance information.
func (s *Structure) Empty() bool {
	return len(s.Dist) < 2
}

// Compute builds the distance matrix and per-point neighbor rankings for a
// point set. Points must share a single dimension. Fewer than two points
// yields an empty structure rather than an error.
func Compute(points [][]float32) (*Structure, error) {
	n := len(points)
	if n < 2 {
		return &Structure{}, nil
	}

	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("point %d has dimension %d, want %d", i, len(p), dim)
		}
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	neighbors := make([][]int, n)
	rank := make([][]int, n)
	for i := 0; i < n; i++ {
		order := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				order = append(order, j)
			}
		}
		row := dist[i]
		sort.SliceStable(order, func(a, b int) bool {
			if row[order[a]] != row[order[b]] {
				return row[order[a]] < row[order[b]]
			}
			return order[a] < order[b]
		})
		ranks := make([]int, n)
		for pos, j := range order {
			ranks[j] = pos + 1
		}
		neighbors[i] = order
		rank[i] = ranks
	}

	return &Structure{Dist: dist, Neighbors: neighbors, Rank: rank}, nil
}

// ComputePair builds the structures for the original and embedded spaces
// concurrently. The two computations share no state, so ordering between
// them is irrelevant.
func ComputePair(ctx context.Context, original, embedded [][]float32) (*Structure, *Structure, error) {
	var orig, emb *Structure

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orig, err = Compute(original)
		if err != nil {
			return fmt.Errorf("original space: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		emb, err = Compute(embedded)
		if err != nil {
			return fmt.Errorf("embedded space: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return orig, emb, nil
}

// UpperTriangle flattens the strict upper triangle of the distance matrix in
// row-major order. The result is empty for an empty structure.
func (s *Structure) UpperTriangle() []float64 {
	n := s.N()
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, s.Dist[i][j])
		}
	}
	return out
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
