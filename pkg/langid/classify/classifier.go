// Package classify estimates a language distribution from an n-gram
// sequence with a randomized Naive-Bayes update.
//
// Each trial starts from a uniform prior, repeatedly samples one known n-gram
// with replacement and multiplies every language's probability by
// (alpha/BaseFreq + P(gram|lang)). The smoothing floor keeps a single unseen
// n-gram from zeroing a language. Trial results are averaged; the per-trial
// alpha perturbation and sampling order are what make the trials differ.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/langid/pkg/langid/internalerr"
	"github.com/cognicore/langid/pkg/langid/model"
)

// Result is the averaged distribution for one call.
type Result struct {
	Probs      []float64 // index-aligned with the model's language order
	Trials     int       // trials that contributed, complete or partial
	Iterations int       // n-gram updates summed over trials
	Truncated  bool      // cancellation cut the work short
}

// Classifier runs trials against one model. Configure it (SetAlpha) before
// sharing it; Classify itself is safe for concurrent use.
type Classifier struct {
	model  *model.Model
	params Params
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for per-trial debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a classifier over m.
func New(m *model.Model, params Params, opts ...Option) (*Classifier, error) {
	if m == nil || m.Len() == 0 {
		return nil, internalerr.ErrNeedProfiles
	}
	p, err := params.withDefaults()
	if err != nil {
		return nil, err
	}
	c := &Classifier{
		model:  m,
		params: p,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model the classifier reads.
func (c *Classifier) Model() *model.Model {
	return c.model
}

// Params returns the effective parameters.
func (c *Classifier) Params() Params {
	return c.params
}

// SetAlpha replaces the smoothing constant. Negative values clamp to 0;
// NaN and infinities are rejected and leave the current value in place.
func (c *Classifier) SetAlpha(alpha float64) error {
	if !finite(alpha) {
		return fmt.Errorf("%w: alpha must be finite (got %v)", internalerr.ErrInvalidConfig, alpha)
	}
	c.params.Alpha = math.Max(alpha, 0)
	return nil
}

// Classify estimates P(lang | grams). Unknown n-grams are ignored; fewer
// known n-grams than Params.MinNGrams yields ErrNotEnoughText.
//
// When ctx is cancelled mid-run the completed (and the interrupted) trials
// are averaged and returned with Truncated set. If no trial got to run the
// uniform prior is returned.
func (c *Classifier) Classify(ctx context.Context, grams []string) (Result, error) {
	vectors := c.known(grams)
	if len(vectors) == 0 || len(vectors) < c.params.MinNGrams {
		return Result{}, fmt.Errorf("%w: %d known n-grams, need %d",
			internalerr.ErrNotEnoughText, len(vectors), max(c.params.MinNGrams, 1))
	}

	seeds := c.trialSeeds()
	trials := make([]trial, len(seeds))
	if c.params.Parallelism <= 1 {
		for i := range trials {
			if ctx.Err() != nil {
				break
			}
			trials[i] = c.runTrial(ctx, i, vectors, seeds[i])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(c.params.Parallelism)
		for i := range trials {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				trials[i] = c.runTrial(ctx, i, vectors, seeds[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	return c.reduce(ctx, trials), nil
}

func (c *Classifier) known(grams []string) [][]float64 {
	vectors := make([][]float64, 0, len(grams))
	for _, g := range grams {
		if vec, ok := c.model.Lookup(g); ok {
			vectors = append(vectors, vec)
		}
	}
	return vectors
}

// trialSeeds draws every trial's seed from the call's master source up
// front, so the result does not depend on scheduling.
func (c *Classifier) trialSeeds() [][2]uint64 {
	master := rand.New(c.source())
	seeds := make([][2]uint64, c.params.Trials)
	for i := range seeds {
		seeds[i] = [2]uint64{master.Uint64(), master.Uint64()}
	}
	return seeds
}

func (c *Classifier) source() rand.Source {
	switch {
	case c.params.NewSource != nil:
		return c.params.NewSource()
	case c.params.Seeded:
		return rand.NewPCG(c.params.Seed, c.params.Seed^0x9e3779b97f4a7c15)
	default:
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
}

type trial struct {
	probs      []float64
	iterations int
	partial    bool
}

func (c *Classifier) runTrial(ctx context.Context, idx int, vectors [][]float64, seed [2]uint64) trial {
	rng := rand.New(rand.NewPCG(seed[0], seed[1]))
	n := c.model.Len()
	probs := make([]float64, n)
	for i := range probs {
		probs[i] = 1 / float64(n)
	}

	alpha := math.Max(c.params.Alpha+rng.NormFloat64()*c.params.AlphaWidth, 0)
	floor := alpha / BaseFreq

	var top float64
	var partial bool
	prevTop := -1.0
	reason := "iteration limit"
	iter := 1
	for ; iter <= c.params.MaxIterations; iter++ {
		vec := vectors[rng.IntN(len(vectors))]
		for i := range probs {
			probs[i] *= floor + vec[i]
		}
		if iter%c.params.CheckInterval != 0 {
			continue
		}
		var ok bool
		if top, ok = normalize(probs); !ok {
			reason = "underflow"
			break
		}
		if top >= c.params.ConvergenceThreshold {
			reason = "converged"
			break
		}
		if prevTop >= 0 && math.Abs(top-prevTop) < c.params.Epsilon {
			reason = "stable"
			break
		}
		prevTop = top
		if ctx.Err() != nil {
			partial = true
			reason = "cancelled"
			break
		}
	}
	iter = min(iter, c.params.MaxIterations)
	if reason == "iteration limit" || reason == "cancelled" {
		top, _ = normalize(probs)
	}

	c.logger.Debug("trial finished",
		"trial", idx,
		"alpha", alpha,
		"iterations", iter,
		"top", top,
		"reason", reason)
	return trial{probs: probs, iterations: iter, partial: partial}
}

// normalize scales p to sum to 1 and returns the largest entry. A zero or
// non-finite sum resets p to uniform and reports false.
func normalize(p []float64) (float64, bool) {
	var sum float64
	for _, v := range p {
		sum += v
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		for i := range p {
			p[i] = 1 / float64(len(p))
		}
		return 1 / float64(len(p)), false
	}
	var top float64
	for i := range p {
		p[i] /= sum
		top = math.Max(top, p[i])
	}
	return top, true
}

// reduce averages the trials in index order.
func (c *Classifier) reduce(ctx context.Context, trials []trial) Result {
	res := Result{Probs: make([]float64, c.model.Len())}
	for _, t := range trials {
		if t.probs == nil {
			res.Truncated = true
			continue
		}
		res.Trials++
		res.Iterations += t.iterations
		res.Truncated = res.Truncated || t.partial
		for i, v := range t.probs {
			res.Probs[i] += v
		}
	}
	if res.Trials == 0 {
		for i := range res.Probs {
			res.Probs[i] = 1 / float64(len(res.Probs))
		}
		res.Truncated = true
		c.logger.Debug("classification cancelled before any trial", "err", ctx.Err())
		return res
	}
	for i := range res.Probs {
		res.Probs[i] /= float64(res.Trials)
	}
	return res
}
