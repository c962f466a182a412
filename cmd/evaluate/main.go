package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/objones25/latent/internal/dataset"
	"github.com/objones25/latent/internal/evaluation"
	"github.com/objones25/latent/internal/model"
	"github.com/objones25/latent/internal/run"
)

func main() {
	var (
		datasetName = flag.String("dataset", "spheres", "dataset: spheres, grid, uniform, or a CSV path")
		modelName   = flag.String("model", "pca", "model: pca, random, ortho, mds")
		latentDim   = flag.Int("dim", 2, "latent dimension")
		k           = flag.Int("k", 15, "neighborhood size for evaluation")
		valFraction = flag.Float64("val-fraction", 0.15, "validation split fraction")
		seed        = flag.Int64("seed", 42, "random seed")
		evaluateOn  = flag.String("evaluate-on", "test", "partition to evaluate: test or validation")
		runDir      = flag.String("rundir", "", "run directory (default runs/<timestamp>)")
		sqlitePath  = flag.String("sqlite", "", "sqlite database for run tracking (optional)")
		redisAddr   = flag.String("redis", "", "redis address for run tracking (optional)")
		sigma       = flag.Float64("density-sigma", 0.1, "kernel bandwidth for the density divergence metric")
	)
	flag.Parse()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	if err := runExperiment(*datasetName, *modelName, *latentDim, *k, *valFraction, *seed,
		*evaluateOn, *runDir, *sqlitePath, *redisAddr, *sigma); err != nil {
		log.Fatal().Err(err).Msg("Experiment failed")
	}
}

func runExperiment(datasetName, modelName string, latentDim, k int, valFraction float64,
	seed int64, evaluateOn, runDir, sqlitePath, redisAddr string, sigma float64) error {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(seed))

	full, test, err := loadDataset(datasetName, seed)
	if err != nil {
		return err
	}
	train, validation, err := dataset.Split(full, valFraction, rng)
	if err != nil {
		return fmt.Errorf("failed to split dataset: %w", err)
	}
	log.Info().Str("dataset", datasetName).Int("train", train.Len()).
		Int("validation", validation.Len()).Int("test", test.Len()).
		Int("dim", full.Dim()).Msg("Dataset ready")

	m, err := buildModel(modelName, latentDim, rng)
	if err != nil {
		return err
	}

	log.Info().Str("model", modelName).Msg("Fitting model")
	fitted, err := m.FitTransform(train.Data)
	if err != nil {
		return fmt.Errorf("failed to fit model: %w", err)
	}

	// Capability is resolved exactly once. Fit-only models are evaluated on
	// the data they were fitted on, which conflates train and test
	// semantics, so it must never happen silently.
	evalSet := test
	if evaluateOn == "validation" {
		evalSet = validation
	}
	var latent [][]float32
	transformer, supportsTransform := m.(model.Transformer)
	if supportsTransform {
		latent, err = transformer.Transform(evalSet.Data)
		if err != nil {
			return fmt.Errorf("failed to transform %s data: %w", evaluateOn, err)
		}
	} else {
		log.Warn().Str("model", modelName).Msg("Model does not support separate training and prediction")
		log.Warn().Msg("Evaluating on the fitting data; results have reduced validity")
		evalSet = train
		latent = fitted
	}

	evaluator := evaluation.New(evaluation.Config{DensitySigma: sigma})
	results, err := evaluator.EvaluateSpace(ctx, evalSet.Data, latent, evalSet.Labels, k)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	prefixed := make(map[string]float64, len(results))
	for name, value := range results {
		prefixed[evaluateOn+"_"+name] = value
	}
	for name, value := range prefixed {
		log.Info().Str("metric", name).Float64("value", value).Msg("Result")
	}

	return persist(ctx, runDir, sqlitePath, redisAddr, datasetName, modelName, prefixed, latent, evalSet.Labels)
}

func loadDataset(name string, seed int64) (*dataset.Dataset, *dataset.Dataset, error) {
	switch name {
	case "spheres":
		cfg := dataset.DefaultSpheresConfig()
		return dataset.Spheres(cfg, rand.New(rand.NewSource(seed))),
			dataset.Spheres(cfg, rand.New(rand.NewSource(seed+1))), nil
	case "grid":
		return dataset.Grid(10), dataset.Grid(10), nil
	case "uniform":
		return dataset.Uniform(500, 10, rand.New(rand.NewSource(seed))),
			dataset.Uniform(500, 10, rand.New(rand.NewSource(seed+1))), nil
	}
	if strings.HasSuffix(name, ".csv") {
		loader, err := dataset.NewLoader(0)
		if err != nil {
			return nil, nil, err
		}
		ds, err := loader.Load(name)
		if err != nil {
			return nil, nil, err
		}
		// CSV datasets carry no dedicated test partition; reuse the file and
		// rely on -evaluate-on=validation for held-out scoring.
		log.Warn().Str("path", name).Msg("CSV dataset has no dedicated test split")
		return ds, ds, nil
	}
	return nil, nil, fmt.Errorf("unknown dataset %q", name)
}

func buildModel(name string, latentDim int, rng *rand.Rand) (model.FitTransformer, error) {
	switch name {
	case "pca":
		return model.NewPCA(latentDim), nil
	case "random":
		return model.NewRandomProjection(latentDim, rng), nil
	case "ortho":
		return model.NewOrthoProjection(latentDim, rng), nil
	case "mds":
		return model.NewMDS(latentDim), nil
	}
	return nil, fmt.Errorf("unknown model %q", name)
}

func persist(ctx context.Context, runDir, sqlitePath, redisAddr, datasetName, modelName string,
	metrics map[string]float64, latent [][]float32, labels []int) error {
	if runDir == "" {
		runDir = filepath.Join("runs", time.Now().Format("20060102-150405"))
	}
	artifacts, err := run.NewArtifacts(runDir)
	if err != nil {
		return err
	}
	if _, err := artifacts.WriteLatents(latent, labels); err != nil {
		return err
	}
	if _, err := artifacts.WriteMetrics(metrics); err != nil {
		return err
	}
	artifacts.ScatterRequest(latent)

	record := &run.Run{
		ID:        fmt.Sprintf("%s-%s-%d", datasetName, modelName, time.Now().UnixNano()),
		Dataset:   datasetName,
		Model:     modelName,
		CreatedAt: time.Now().UTC(),
		Metrics:   metrics,
	}
	for _, store := range openStores(sqlitePath, redisAddr) {
		if err := store.SaveRun(ctx, record); err != nil {
			log.Error().Err(err).Msg("Failed to persist run")
		}
		store.Close()
	}

	log.Info().Str("rundir", runDir).Str("run", record.ID).Msg("Run recorded")
	return nil
}

func openStores(sqlitePath, redisAddr string) []run.Store {
	var stores []run.Store
	if sqlitePath != "" {
		s, err := run.NewSQLiteStore(sqlitePath)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open sqlite run store")
		} else {
			stores = append(stores, s)
		}
	}
	if redisAddr != "" {
		s, err := run.NewRedisStore(run.RedisConfig{Addr: redisAddr})
		if err != nil {
			log.Error().Err(err).Msg("Failed to open redis run store")
		} else {
			stores = append(stores, s)
		}
	}
	return stores
}
