package evaluation

import (
	"context"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/latent/test/testutil"
)

func TestMain(m *testing.M) {
	testutil.InitTestLogger()
	os.Exit(m.Run())
}

func gridPoints(side int) [][]float32 {
	points := make([][]float32, 0, side*side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			points = append(points, []float32{float32(x), float32(y)})
		}
	}
	return points
}

func TestEvaluateSpaceIdentityGrid(t *testing.T) {
	// N=100 points on a 2-D grid, embedding identical to the data: every
	// local and global structure metric should report perfect preservation.
	points := gridPoints(10)
	ev := New(DefaultConfig())

	results, err := ev.EvaluateSpace(context.Background(), points, points, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, 1.0, results["knn_overlap"])
	assert.Equal(t, 1.0, results["trustworthiness"])
	assert.Equal(t, 1.0, results["continuity"])
	assert.Equal(t, 0.0, results["mrre"])
	assert.Equal(t, 0.0, results["mrre_data"])
	assert.Equal(t, 0.0, results["mrre_latent"])
	assert.InDelta(t, 1.0, results["spearman_correlation"], 1e-12)
	assert.InDelta(t, 0.0, results["distance_rmse"], 1e-12)
	assert.NotContains(t, results, "effective_k")
	assert.NotContains(t, results, "knn_label_agreement")
}

func TestEvaluateSpaceIsometry(t *testing.T) {
	// Translating every point is an isometry, so neighborhoods survive.
	rng := rand.New(rand.NewSource(20))
	points := randomPoints(50, 3, rng)
	shifted := make([][]float32, len(points))
	for i, p := range points {
		shifted[i] = []float32{p[0] + 10, p[1] - 4, p[2] + 7}
	}

	ev := New(DefaultConfig())
	results, err := ev.EvaluateSpace(context.Background(), points, shifted, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, results["knn_overlap"])
	assert.Equal(t, 0.0, results["mrre"])
}

func TestEvaluateSpaceProjection(t *testing.T) {
	// Dropping 8 of 10 coordinates is a deterministic, lossy projection:
	// results must be reproducible and strictly between the extremes.
	rng := rand.New(rand.NewSource(21))
	points := randomPoints(50, 10, rng)
	projected := make([][]float32, len(points))
	for i, p := range points {
		projected[i] = []float32{p[0], p[1]}
	}

	ev := New(DefaultConfig())
	first, err := ev.EvaluateSpace(context.Background(), points, projected, nil, 10)
	require.NoError(t, err)

	overlap := first["knn_overlap"]
	assert.Greater(t, overlap, 0.0)
	assert.Less(t, overlap, 1.0)

	second, err := ev.EvaluateSpace(context.Background(), points, projected, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second, "evaluation must be idempotent")
}

func TestEvaluateSpaceLabels(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	points := randomPoints(30, 4, rng)
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = i % 3
	}

	ev := New(DefaultConfig())
	results, err := ev.EvaluateSpace(context.Background(), points, points, labels, 5)
	require.NoError(t, err)

	agreement, ok := results["knn_label_agreement"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, agreement, 0.0)
	assert.LessOrEqual(t, agreement, 1.0)
}

func TestEvaluateSpaceClipsK(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	points := randomPoints(10, 3, rng)

	ev := New(DefaultConfig())
	results, err := ev.EvaluateSpace(context.Background(), points, points, nil, 50)
	require.NoError(t, err)

	assert.Equal(t, 8.0, results["effective_k"])
	assert.Equal(t, 1.0, results["knn_overlap"])
	assert.Contains(t, results, "trustworthiness")
}

func TestEvaluateSpaceTinyInputs(t *testing.T) {
	ev := New(DefaultConfig())
	for _, points := range [][][]float32{
		{},
		{{1, 2}},
		{{1, 2}, {3, 4}},
	} {
		results, err := ev.EvaluateSpace(context.Background(), points, points, nil, 5)
		require.NoError(t, err, "n=%d", len(points))
		assert.Empty(t, results, "n=%d", len(points))
	}
}

func TestEvaluateSpaceFatalErrors(t *testing.T) {
	ev := New(DefaultConfig())
	ctx := context.Background()
	points := gridPoints(3)

	t.Run("Length mismatch", func(t *testing.T) {
		_, err := ev.EvaluateSpace(ctx, points, points[:4], nil, 2)
		assert.ErrorIs(t, err, ErrLengthMismatch)
		assert.True(t, IsFatal(err))

		var evalErr *EvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, "evaluate_space", evalErr.Op)
	})

	t.Run("Label mismatch", func(t *testing.T) {
		_, err := ev.EvaluateSpace(ctx, points, points, []int{1, 2}, 2)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("Non-finite data", func(t *testing.T) {
		bad := gridPoints(3)
		bad[4] = []float32{float32(math.NaN()), 0}
		_, err := ev.EvaluateSpace(ctx, bad, points, nil, 2)
		assert.ErrorIs(t, err, ErrNonFinite)

		inf := gridPoints(3)
		inf[0] = []float32{float32(math.Inf(1)), 0}
		_, err = ev.EvaluateSpace(ctx, points, inf, nil, 2)
		assert.ErrorIs(t, err, ErrNonFinite)
	})

	t.Run("Non-positive k", func(t *testing.T) {
		_, err := ev.EvaluateSpace(ctx, points, points, nil, 0)
		assert.Error(t, err)
	})
}

func TestEvaluateSpacePartialResults(t *testing.T) {
	// Identical embedded points: local metrics still work against the
	// original ranks, but density metrics are undefined and must be
	// omitted rather than aborting the call.
	rng := rand.New(rand.NewSource(24))
	points := randomPoints(20, 3, rng)
	collapsed := make([][]float32, len(points))
	for i := range collapsed {
		collapsed[i] = []float32{0, 0}
	}

	ev := New(DefaultConfig())
	results, err := ev.EvaluateSpace(context.Background(), points, collapsed, nil, 4)
	require.NoError(t, err)

	assert.NotContains(t, results, "spearman_correlation")
	assert.NotContains(t, results, "density_correlation")
	assert.NotContains(t, results, "density_kl_global")
	assert.Contains(t, results, "knn_overlap")
	assert.Contains(t, results, "trustworthiness")
}
