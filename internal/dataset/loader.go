package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
)

const defaultCacheSize = 8

// Loader reads CSV datasets from disk and memoizes them in an LRU cache so
// repeated experiment runs over the same files skip the parse.
type Loader struct {
	cache *lru.Cache
}

// NewLoader creates a loader caching up to size parsed datasets.
func NewLoader(size int) (*Loader, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset cache: %w", err)
	}
	return &Loader{cache: cache}, nil
}

// Load parses a CSV file where every column but the last holds a float
// feature and the last column holds an integer class label. The parsed
// dataset is shared between callers; treat it as read-only.
func (l *Loader) Load(path string) (*Dataset, error) {
	if cached, ok := l.cache.Get(path); ok {
		log.Debug().Str("path", path).Msg("Dataset cache hit")
		return cached.(*Dataset), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, path)
	}

	dim := len(records[0]) - 1
	if dim < 1 {
		return nil, fmt.Errorf("dataset %s needs at least one feature column", path)
	}

	ds := &Dataset{
		Data:   make([][]float32, 0, len(records)),
		Labels: make([]int, 0, len(records)),
	}
	for i, rec := range records {
		if len(rec) != dim+1 {
			return nil, fmt.Errorf("dataset %s: row %d has %d columns, want %d", path, i, len(rec), dim+1)
		}
		row := make([]float32, dim)
		for j := 0; j < dim; j++ {
			v, err := strconv.ParseFloat(rec[j], 32)
			if err != nil {
				return nil, fmt.Errorf("dataset %s: row %d column %d: %w", path, i, j, err)
			}
			row[j] = float32(v)
		}
		label, err := strconv.Atoi(rec[dim])
		if err != nil {
			return nil, fmt.Errorf("dataset %s: row %d label: %w", path, i, err)
		}
		ds.Data = append(ds.Data, row)
		ds.Labels = append(ds.Labels, label)
	}

	l.cache.Add(path, ds)
	log.Debug().Str("path", path).Int("samples", ds.Len()).Int("dim", dim).Msg("Dataset loaded")
	return ds, nil
}
