package dataset

import (
	"math"
	"math/rand"
)

// SpheresConfig configures the synthetic nested-spheres benchmark: several
// small hyperspheres shifted away from the origin, enclosed by one larger
// sphere. The structure is easy to inspect in a 2-D embedding and hard for
// purely local methods, which is why it serves as the default benchmark.
type SpheresConfig struct {
	InnerSpheres     int     // number of enclosed spheres
	SamplesPerSphere int     // samples drawn from each inner sphere
	Dim              int     // ambient dimension
	Radius           float64 // radius of the inner spheres
	EnclosingFactor  float64 // enclosing sphere radius, as a multiple of Radius
	EnclosingSamples int     // samples on the enclosing sphere
}

// DefaultSpheresConfig returns the benchmark's standard shape.
func DefaultSpheresConfig() SpheresConfig {
	return SpheresConfig{
		InnerSpheres:     10,
		SamplesPerSphere: 100,
		Dim:              101,
		Radius:           5,
		EnclosingFactor:  5,
		EnclosingSamples: 1000,
	}
}

// Spheres generates the nested-spheres dataset. Inner spheres get labels
// 0..InnerSpheres−1; the enclosing sphere gets label InnerSpheres.
func Spheres(cfg SpheresConfig, rng *rand.Rand) *Dataset {
	total := cfg.InnerSpheres*cfg.SamplesPerSphere + cfg.EnclosingSamples
	ds := &Dataset{
		Data:   make([][]float32, 0, total),
		Labels: make([]int, 0, total),
	}

	variance := 10 / math.Sqrt(float64(cfg.Dim))
	for s := 0; s < cfg.InnerSpheres; s++ {
		shift := make([]float64, cfg.Dim)
		for j := range shift {
			shift[j] = rng.NormFloat64() * variance
		}
		for i := 0; i < cfg.SamplesPerSphere; i++ {
			p := sampleSphere(cfg.Dim, cfg.Radius, rng)
			for j := range p {
				p[j] += float32(shift[j])
			}
			ds.Data = append(ds.Data, p)
			ds.Labels = append(ds.Labels, s)
		}
	}

	enclosing := cfg.Radius * cfg.EnclosingFactor
	for i := 0; i < cfg.EnclosingSamples; i++ {
		ds.Data = append(ds.Data, sampleSphere(cfg.Dim, enclosing, rng))
		ds.Labels = append(ds.Labels, cfg.InnerSpheres)
	}
	return ds
}

// sampleSphere draws a point uniformly from the surface of a dim-sphere of
// the given radius by normalizing a Gaussian sample.
func sampleSphere(dim int, radius float64, rng *rand.Rand) []float32 {
	p := make([]float64, dim)
	var norm float64
	for j := range p {
		p[j] = rng.NormFloat64()
		norm += p[j] * p[j]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	out := make([]float32, dim)
	for j := range p {
		out[j] = float32(p[j] / norm * radius)
	}
	return out
}
