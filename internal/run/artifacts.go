package run

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Artifacts writes the per-run files external tooling consumes: the raw
// embedding with labels, the metric mapping, and for 2-D embeddings the
// path where a scatter plot should be rendered. Rendering itself happens
// outside this repository.
type Artifacts struct {
	Dir string
}

// NewArtifacts ensures the run directory exists.
func NewArtifacts(dir string) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return &Artifacts{Dir: dir}, nil
}

// WriteLatents dumps the embedding and aligned labels as latents.csv
// (one row per sample, label last). Labels may be nil.
func (a *Artifacts) WriteLatents(embedding [][]float32, labels []int) (string, error) {
	if labels != nil && len(labels) != len(embedding) {
		return "", fmt.Errorf("labels length %d does not match embedding length %d", len(labels), len(embedding))
	}

	path := filepath.Join(a.Dir, "latents.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create latents file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for i, row := range embedding {
		rec := make([]string, 0, len(row)+1)
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		if labels != nil {
			rec = append(rec, strconv.Itoa(labels[i]))
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("failed to write latents row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush latents: %w", err)
	}
	return path, nil
}

// WriteMetrics dumps the metric mapping as metrics.json.
func (a *Artifacts) WriteMetrics(metrics map[string]float64) (string, error) {
	path := filepath.Join(a.Dir, "metrics.json")
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write metrics: %w", err)
	}
	return path, nil
}

// ScatterRequest returns the path where a 2-D scatter visualization of the
// embedding should be produced, or "" when the embedding is not 2-D.
func (a *Artifacts) ScatterRequest(embedding [][]float32) string {
	if len(embedding) == 0 || len(embedding[0]) != 2 {
		return ""
	}
	path := filepath.Join(a.Dir, "latent_visualization.svg")
	log.Info().Str("path", path).Msg("2-D embedding, scatter visualization requested")
	return path
}
