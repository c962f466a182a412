package evaluation

import (
	"fmt"

	"github.com/objones25/latent/internal/pairwise"
)

// checkNeighborhood validates the shared prerequisites of the local metrics.
func checkNeighborhood(orig, emb *pairwise.Structure, k int) error {
	if orig == nil || emb == nil || orig.Empty() || emb.Empty() {
		return ErrNotComputed
	}
	if orig.N() != emb.N() {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, orig.N(), emb.N())
	}
	if k < 1 || k > orig.N()-2 {
		return fmt.Errorf("%w: k=%d outside [1, %d]", ErrUndefined, k, orig.N()-2)
	}
	return nil
}

// KNNOverlap computes the mean fraction of shared K-nearest neighbors
// between the two spaces. 1.0 means every local neighborhood is preserved.
func KNNOverlap(orig, emb *pairwise.Structure, k int) (float64, error) {
	if err := checkNeighborhood(orig, emb, k); err != nil {
		return 0, err
	}

	n := orig.N()
	var total float64
	for i := 0; i < n; i++ {
		shared := 0
		for _, j := range emb.Neighbors[i][:k] {
			if orig.Rank[i][j] <= k {
				shared++
			}
		}
		total += float64(shared) / float64(k)
	}
	return total / float64(n), nil
}

// Trustworthiness penalizes points that appear in an embedded K-neighborhood
// despite being ranked beyond K in the original space. The penalty is each
// intruder's original rank minus K, normalized so the score lies in [0,1]
// with 1.0 meaning no intruders.
func Trustworthiness(orig, emb *pairwise.Structure, k int) (float64, error) {
	if err := checkNeighborhood(orig, emb, k); err != nil {
		return 0, err
	}
	return rankAgreement(orig, emb, k), nil
}

// Continuity is the symmetric counterpart of Trustworthiness: it penalizes
// points that were K-neighbors originally but fall outside the embedded
// K-neighborhood, by swapping the roles of the two rank structures.
func Continuity(orig, emb *pairwise.Structure, k int) (float64, error) {
	if err := checkNeighborhood(orig, emb, k); err != nil {
		return 0, err
	}
	return rankAgreement(emb, orig, k), nil
}

// rankAgreement sums rank displacements of points inside a K-neighborhood of
// the "near" space but beyond K in the "far" space.
func rankAgreement(far, near *pairwise.Structure, k int) float64 {
	n := far.N()
	var penalty float64
	for i := 0; i < n; i++ {
		for _, j := range near.Neighbors[i][:k] {
			if r := far.Rank[i][j]; r > k {
				penalty += float64(r - k)
			}
		}
	}

	// Classic closed-form bound; for large K relative to N it goes
	// non-positive, in which case the loose worst-case bound keeps the
	// score inside [0,1].
	norm := float64(n*k) * float64(2*n-3*k-1) / 2
	if norm <= 0 {
		norm = float64(n*k) * float64(n-1-k)
	}
	score := 1 - penalty/norm
	if score < 0 {
		score = 0
	}
	return score
}

// MeanRelativeRankError measures, for each point j among i's K nearest in
// space a, how far j's rank moved in space b, normalized by the maximum
// possible displacement N−1. Lower is better; 0 means ranks agree exactly.
func MeanRelativeRankError(a, b *pairwise.Structure, k int) (float64, error) {
	if err := checkNeighborhood(a, b, k); err != nil {
		return 0, err
	}

	n := a.N()
	var total float64
	for i := 0; i < n; i++ {
		for _, j := range a.Neighbors[i][:k] {
			d := a.Rank[i][j] - b.Rank[i][j]
			if d < 0 {
				d = -d
			}
			total += float64(d)
		}
	}
	return total / (float64(n*k) * float64(n-1)), nil
}

// LabelAgreement computes the mean fraction of embedded-space K neighbors
// that share the anchor point's label. Only meaningful for labeled data.
func LabelAgreement(emb *pairwise.Structure, labels []int, k int) (float64, error) {
	if emb == nil || emb.Empty() {
		return 0, ErrNotComputed
	}
	n := emb.N()
	if len(labels) != n {
		return 0, fmt.Errorf("%w: %d labels for %d points", ErrLengthMismatch, len(labels), n)
	}
	if k < 1 || k > n-2 {
		return 0, fmt.Errorf("%w: k=%d outside [1, %d]", ErrUndefined, k, n-2)
	}

	var total float64
	for i := 0; i < n; i++ {
		same := 0
		for _, j := range emb.Neighbors[i][:k] {
			if labels[j] == labels[i] {
				same++
			}
		}
		total += float64(same) / float64(k)
	}
	return total / float64(n), nil
}
