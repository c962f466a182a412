package evaluation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/objones25/latent/internal/pairwise"
)

// checkGlobal validates the shared prerequisites of the global metrics.
func checkGlobal(orig, emb *pairwise.Structure) error {
	if orig == nil || emb == nil || orig.Empty() || emb.Empty() {
		return ErrNotComputed
	}
	if orig.N() != emb.N() {
		return ErrLengthMismatch
	}
	return nil
}

// SpearmanCorrelation computes the rank correlation between the flattened
// upper-triangle pairwise distances of the two spaces. It measures whether
// the global ordering of distances is preserved, independent of any
// neighborhood cutoff.
func SpearmanCorrelation(orig, emb *pairwise.Structure) (float64, error) {
	if err := checkGlobal(orig, emb); err != nil {
		return 0, err
	}

	a := fractionalRanks(orig.UpperTriangle())
	b := fractionalRanks(emb.UpperTriangle())
	return correlate(a, b)
}

// PearsonCorrelation computes the linear correlation between the raw
// upper-triangle pairwise distances of the two spaces.
func PearsonCorrelation(orig, emb *pairwise.Structure) (float64, error) {
	if err := checkGlobal(orig, emb); err != nil {
		return 0, err
	}
	return correlate(orig.UpperTriangle(), emb.UpperTriangle())
}

// DistanceRMSE computes the root mean squared difference between the two
// upper-triangle distance vectors. Only comparable across embeddings of the
// same dataset since it is scale dependent.
func DistanceRMSE(orig, emb *pairwise.Structure) (float64, error) {
	if err := checkGlobal(orig, emb); err != nil {
		return 0, err
	}

	a := orig.UpperTriangle()
	b := emb.UpperTriangle()
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(a))), nil
}

// DensityCorrelation compares local density estimates between the two
// spaces. The density at a point is the inverse mean distance to its K
// nearest neighbors; the metric is the linear correlation of the log
// densities, so relative rather than absolute density must match.
func DensityCorrelation(orig, emb *pairwise.Structure, k int) (float64, error) {
	if err := checkNeighborhood(orig, emb, k); err != nil {
		return 0, err
	}

	a, err := logDensities(orig, k)
	if err != nil {
		return 0, err
	}
	b, err := logDensities(emb, k)
	if err != nil {
		return 0, err
	}
	return correlate(a, b)
}

// DensityKL estimates a global density per point with a Gaussian kernel of
// bandwidth sigma over max-normalized distances and reports the symmetrized
// KL divergence between the two density distributions. 0 means densities
// are identical; lower is better.
func DensityKL(orig, emb *pairwise.Structure, sigma float64) (float64, error) {
	if err := checkGlobal(orig, emb); err != nil {
		return 0, err
	}

	p, err := kernelDensities(orig, sigma)
	if err != nil {
		return 0, err
	}
	q, err := kernelDensities(emb, sigma)
	if err != nil {
		return 0, err
	}

	var kl float64
	for i := range p {
		kl += p[i]*math.Log(p[i]/q[i]) + q[i]*math.Log(q[i]/p[i])
	}
	return kl / 2, nil
}

func logDensities(s *pairwise.Structure, k int) ([]float64, error) {
	n := s.N()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for _, j := range s.Neighbors[i][:k] {
			sum += s.Dist[i][j]
		}
		if sum == 0 {
			return nil, ErrUndefined
		}
		out[i] = -math.Log(sum / float64(k))
	}
	return out, nil
}

func kernelDensities(s *pairwise.Structure, sigma float64) ([]float64, error) {
	n := s.N()
	var maxDist float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if s.Dist[i][j] > maxDist {
				maxDist = s.Dist[i][j]
			}
		}
	}
	if maxDist == 0 || sigma <= 0 {
		return nil, ErrUndefined
	}

	out := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			d := s.Dist[i][j] / maxDist
			sum += math.Exp(-(d * d) / sigma)
		}
		out[i] = sum
		total += sum
	}
	for i := range out {
		out[i] /= total
	}
	return out, nil
}

// correlate wraps gonum's Pearson correlation and maps zero-variance inputs
// to ErrUndefined instead of NaN.
func correlate(a, b []float64) (float64, error) {
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, ErrUndefined
	}
	return r, nil
}

// fractionalRanks assigns 1-based ranks to the values, averaging ranks over
// groups of ties the way scipy's spearmanr does.
func fractionalRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for start := 0; start < n; {
		end := start + 1
		for end < n && values[order[end]] == values[order[start]] {
			end++
		}
		avg := float64(start+end+1) / 2 // mean of 1-based ranks start+1..end
		for i := start; i < end; i++ {
			ranks[order[i]] = avg
		}
		start = end
	}
	return ranks
}
