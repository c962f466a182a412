package evaluation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/objones25/latent/internal/monitor"
	"github.com/objones25/latent/internal/pairwise"
)

// Config holds evaluation configuration
type Config struct {
	// DensitySigma is the Gaussian kernel bandwidth for the global density
	// divergence metric.
	DensitySigma float64
}

// DefaultConfig returns sensible default evaluation settings
func DefaultConfig() Config {
	return Config{
		DensitySigma: 0.1,
	}
}

// Evaluator computes the battery of neighborhood- and density-preservation
// metrics for a (data, embedding, labels) triple. It holds no state between
// calls; distance structures are recomputed per call.
type Evaluator struct {
	cfg Config
}

// New creates a new Evaluator
func New(cfg Config) *Evaluator {
	if cfg.DensitySigma <= 0 {
		cfg.DensitySigma = DefaultConfig().DensitySigma
	}
	return &Evaluator{cfg: cfg}
}

// EvaluateSpace runs every applicable metric comparing the original data to
// its embedding and returns the successes as a flat name→scalar mapping.
//
// Malformed inputs (length mismatch, non-finite values, k < 1) fail fast.
// Fewer than three points yields an empty mapping. A k exceeding N−2 is
// clipped and reported under the "effective_k" key. Per-metric numerical
// failures are logged and their keys omitted; they never abort the call, so
// callers must treat a missing key as "not computed" rather than zero.
func (e *Evaluator) EvaluateSpace(ctx context.Context, original, embedded [][]float32, labels []int, k int) (map[string]float64, error) {
	start := time.Now()

	n := len(original)
	if len(embedded) != n {
		monitor.EvaluationsTotal.WithLabelValues("failed").Inc()
		return nil, NewEvalError("evaluate_space", ErrLengthMismatch,
			fmt.Sprintf("original=%d embedded=%d", n, len(embedded)))
	}
	if labels != nil && len(labels) != n {
		monitor.EvaluationsTotal.WithLabelValues("failed").Inc()
		return nil, NewEvalError("evaluate_space", ErrLengthMismatch,
			fmt.Sprintf("labels=%d samples=%d", len(labels), n))
	}
	if err := checkFinite(original); err != nil {
		monitor.EvaluationsTotal.WithLabelValues("failed").Inc()
		return nil, NewEvalError("evaluate_space", err, "original data")
	}
	if err := checkFinite(embedded); err != nil {
		monitor.EvaluationsTotal.WithLabelValues("failed").Inc()
		return nil, NewEvalError("evaluate_space", err, "embedded data")
	}
	if k < 1 {
		monitor.EvaluationsTotal.WithLabelValues("failed").Inc()
		return nil, NewEvalError("evaluate_space", ErrUndefined, fmt.Sprintf("k=%d must be positive", k))
	}

	results := make(map[string]float64)
	if n < 3 {
		log.Warn().Int("n", n).Msg("Too few points for evaluation, returning empty result mapping")
		monitor.EvaluationsTotal.WithLabelValues("empty").Inc()
		return results, nil
	}

	effectiveK := k
	if effectiveK > n-2 {
		effectiveK = n - 2
		log.Warn().Int("k", k).Int("effective_k", effectiveK).
			Msg("Neighborhood size exceeds N-2, clipping")
		results["effective_k"] = float64(effectiveK)
	}

	pairStart := time.Now()
	orig, emb, err := pairwise.ComputePair(ctx, original, embedded)
	if err != nil {
		monitor.EvaluationsTotal.WithLabelValues("failed").Inc()
		return nil, NewEvalError("evaluate_space", err, "pairwise structures")
	}
	monitor.PairwiseLatency.Observe(time.Since(pairStart).Seconds())

	metrics := []struct {
		name string
		fn   func() (float64, error)
	}{
		{"knn_overlap", func() (float64, error) { return KNNOverlap(orig, emb, effectiveK) }},
		{"trustworthiness", func() (float64, error) { return Trustworthiness(orig, emb, effectiveK) }},
		{"continuity", func() (float64, error) { return Continuity(orig, emb, effectiveK) }},
		{"mrre_data", func() (float64, error) { return MeanRelativeRankError(orig, emb, effectiveK) }},
		{"mrre_latent", func() (float64, error) { return MeanRelativeRankError(emb, orig, effectiveK) }},
		{"mrre", func() (float64, error) {
			fwd, err := MeanRelativeRankError(orig, emb, effectiveK)
			if err != nil {
				return 0, err
			}
			rev, err := MeanRelativeRankError(emb, orig, effectiveK)
			if err != nil {
				return 0, err
			}
			return (fwd + rev) / 2, nil
		}},
		{"spearman_correlation", func() (float64, error) { return SpearmanCorrelation(orig, emb) }},
		{"pearson_correlation", func() (float64, error) { return PearsonCorrelation(orig, emb) }},
		{"distance_rmse", func() (float64, error) { return DistanceRMSE(orig, emb) }},
		{"density_correlation", func() (float64, error) { return DensityCorrelation(orig, emb, effectiveK) }},
		{"density_kl_global", func() (float64, error) { return DensityKL(orig, emb, e.cfg.DensitySigma) }},
	}
	if labels != nil {
		metrics = append(metrics, struct {
			name string
			fn   func() (float64, error)
		}{"knn_label_agreement", func() (float64, error) { return LabelAgreement(emb, labels, effectiveK) }})
	}

	failures := 0
	for _, m := range metrics {
		v, err := m.fn()
		if err != nil {
			failures++
			monitor.MetricFailures.WithLabelValues(m.name).Inc()
			log.Warn().Err(err).Str("metric", m.name).Msg("Metric computation failed, omitting from results")
			continue
		}
		results[m.name] = v
		log.Debug().Str("metric", m.name).Float64("value", v).Msg("Metric computed")
	}

	status := "success"
	if failures > 0 {
		status = "partial"
	}
	monitor.EvaluationsTotal.WithLabelValues(status).Inc()
	monitor.EvaluationDuration.Observe(time.Since(start).Seconds())

	log.Info().Int("n", n).Int("k", effectiveK).Int("metrics", len(results)).
		Int("failures", failures).Msg("Evaluation complete")

	return results, nil
}

func checkFinite(data [][]float32) error {
	for i, row := range data {
		for _, v := range row {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%w: sample %d", ErrNonFinite, i)
			}
		}
	}
	return nil
}
