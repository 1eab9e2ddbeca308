package classify

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cognicore/langid/pkg/langid/internalerr"
)

// BaseFreq scales alpha into the floor probability added to every
// language's n-gram probability: floor = alpha / BaseFreq.
const BaseFreq = 10000

// Params tunes the randomized estimator.
type Params struct {
	Alpha                float64 // smoothing constant
	AlphaWidth           float64 // stddev of the per-trial alpha perturbation
	Trials               int     // number of independent trials
	MaxIterations        int     // per-trial update ceiling
	CheckInterval        int     // updates between renormalizations
	ConvergenceThreshold float64 // stop once the top probability reaches this
	Epsilon              float64 // stop once the top probability moves less than this
	MinNGrams            int     // known n-grams required to classify
	Parallelism          int     // concurrent trials per call; <= 1 runs them in order

	// Seeded makes every call start from Seed, so identical input gives
	// bit-identical output. NewSource, when set, takes precedence.
	Seeded    bool
	Seed      uint64
	NewSource func() rand.Source
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{
		Alpha:                0.5,
		AlphaWidth:           0.05,
		Trials:               7,
		MaxIterations:        1000,
		CheckInterval:        5,
		ConvergenceThreshold: 0.99999,
		Epsilon:              1e-9,
		MinNGrams:            1,
		Parallelism:          1,
	}
}

// withDefaults fills zero fields from DefaultParams and rejects values
// that cannot work.
func (p Params) withDefaults() (Params, error) {
	d := DefaultParams()
	for name, v := range map[string]float64{
		"alpha":                 p.Alpha,
		"alpha width":           p.AlphaWidth,
		"convergence threshold": p.ConvergenceThreshold,
		"epsilon":               p.Epsilon,
	} {
		if !finite(v) {
			return p, fmt.Errorf("%w: %s must be finite (got %v)", internalerr.ErrInvalidConfig, name, v)
		}
	}
	if p.Alpha < 0 {
		return p, fmt.Errorf("%w: alpha must be >= 0 (got %v)", internalerr.ErrInvalidConfig, p.Alpha)
	}
	if p.AlphaWidth < 0 {
		return p, fmt.Errorf("%w: alpha width must be >= 0 (got %v)", internalerr.ErrInvalidConfig, p.AlphaWidth)
	}
	if p.ConvergenceThreshold > 1 {
		return p, fmt.Errorf("%w: convergence threshold must be <= 1 (got %v)", internalerr.ErrInvalidConfig, p.ConvergenceThreshold)
	}
	if p.Trials <= 0 {
		p.Trials = d.Trials
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = d.MaxIterations
	}
	if p.CheckInterval <= 0 {
		p.CheckInterval = d.CheckInterval
	}
	if p.ConvergenceThreshold <= 0 {
		p.ConvergenceThreshold = d.ConvergenceThreshold
	}
	if p.Epsilon < 0 {
		p.Epsilon = 0
	}
	if p.MinNGrams <= 0 {
		p.MinNGrams = d.MinNGrams
	}
	if p.Parallelism <= 0 {
		p.Parallelism = d.Parallelism
	}
	return p, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
