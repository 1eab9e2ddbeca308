// Package langid identifies the natural language of a text from its
// character n-gram statistics.
//
// A Detector owns a frozen probability model built from per-language
// profiles. Detect returns the single most probable language,
// DetectLangs the ranked candidates. The model can be replaced at runtime
// with Swap; calls in flight finish on the model they started with.
package langid

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/langid/pkg/langid/classify"
	"github.com/cognicore/langid/pkg/langid/config"
	"github.com/cognicore/langid/pkg/langid/internalerr"
	"github.com/cognicore/langid/pkg/langid/model"
	"github.com/cognicore/langid/pkg/langid/ngram"
	"github.com/cognicore/langid/pkg/langid/profile"
	"github.com/cognicore/langid/pkg/langid/rank"
)

// Detector is the language identification facade
type Detector struct {
	model     atomic.Pointer[model.Model]
	params    classify.Params
	ranker    *rank.Ranker
	extractor *ngram.Extractor
	timeout   time.Duration
	logger    *slog.Logger
}

// Options configures a Detector
type Options struct {
	Model     *model.Model     // required
	Params    *classify.Params // nil means classify.DefaultParams
	Ranker    *rank.Ranker     // nil means rank.DefaultRanker
	Extractor *ngram.Extractor // nil means ngram.New()
	Timeout   time.Duration    // per-call budget, 0 for none
	Logger    *slog.Logger
}

// Load builds a frozen model from profile records, indexed in the given
// order. At least two records are required.
func Load(records []profile.Record) (*model.Model, error) {
	return model.Load(records)
}

// New creates a Detector with the given dependencies
func New(opts Options) (*Detector, error) {
	if opts.Model == nil {
		return nil, internalerr.ErrNeedProfiles
	}
	params := classify.DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	// Fail on bad parameters now rather than on the first call.
	c, err := classify.New(opts.Model, params)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		params:    c.Params(),
		ranker:    opts.Ranker,
		extractor: opts.Extractor,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
	if d.ranker == nil {
		d.ranker = rank.DefaultRanker()
	}
	if d.extractor == nil {
		d.extractor = ngram.New()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.model.Store(opts.Model)
	return d, nil
}

// NewFromConfig loads the model and tuning described by cfg.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Detector, error) {
	comp, err := (&config.Loader{Config: cfg, Logger: logger}).Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(Options{
		Model:     comp.Model,
		Params:    &comp.Params,
		Ranker:    comp.Ranker,
		Extractor: comp.Extractor,
		Timeout:   cfg.Detector.Timeout,
		Logger:    logger,
	})
}

// Detect returns the most probable language of text.
//
// It fails with ErrNotEnoughText when text holds no n-gram the model
// knows, and with ErrNoCandidate when no language is confident enough.
func (d *Detector) Detect(ctx context.Context, text string) (string, error) {
	res, m, err := d.run(ctx, text)
	if err != nil {
		return "", err
	}
	best, err := d.ranker.Best(m.Languages(), res.Probs)
	if err != nil {
		return "", err
	}
	return best.Lang, nil
}

// DetectLangs returns the candidates above the ranking threshold, most
// probable first.
func (d *Detector) DetectLangs(ctx context.Context, text string) ([]rank.Language, error) {
	res, m, err := d.run(ctx, text)
	if err != nil {
		return nil, err
	}
	return d.ranker.Ranked(m.Languages(), res.Probs), nil
}

// Distribution returns the unfiltered probability of every loaded language
// in model order.
func (d *Detector) Distribution(ctx context.Context, text string) ([]rank.Language, error) {
	res, m, err := d.run(ctx, text)
	if err != nil {
		return nil, err
	}
	return rank.All(m.Languages(), res.Probs), nil
}

func (d *Detector) run(ctx context.Context, text string) (classify.Result, *model.Model, error) {
	m := d.model.Load()
	c, err := classify.New(m, d.params, classify.WithLogger(d.logger))
	if err != nil {
		return classify.Result{}, nil, err
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err := c.Classify(ctx, d.extractor.Extract(text))
	if err != nil {
		return classify.Result{}, nil, err
	}
	if res.Truncated {
		d.logger.Warn("classification truncated",
			"trials", res.Trials,
			"model", m.ID(),
			"err", ctx.Err())
	}
	return res, m, nil
}

// BatchResult is the outcome for one text of DetectBatch
type BatchResult struct {
	Index int
	Lang  string
	Langs []rank.Language
	Err   error
}

// DetectBatch classifies texts concurrently with at most workers
// goroutines (workers <= 0 means one per text). Failures are reported per
// item; results are in input order.
func (d *Detector) DetectBatch(ctx context.Context, texts []string, workers int) []BatchResult {
	results := make([]BatchResult, len(texts))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, text := range texts {
		g.Go(func() error {
			r := BatchResult{Index: i}
			if err := ctx.Err(); err != nil {
				r.Err = err
				results[i] = r
				return nil
			}
			res, m, err := d.run(ctx, text)
			if err != nil {
				r.Err = err
				results[i] = r
				return nil
			}
			r.Langs = d.ranker.Ranked(m.Languages(), res.Probs)
			if best, err := d.ranker.Best(m.Languages(), res.Probs); err != nil {
				r.Err = err
			} else {
				r.Lang = best.Lang
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Swap installs a new model and returns the previous one.
func (d *Detector) Swap(m *model.Model) (*model.Model, error) {
	if m == nil || m.Len() == 0 {
		return nil, internalerr.ErrNeedProfiles
	}
	old := d.model.Swap(m)
	d.logger.Info("model swapped",
		"from", old.ID(),
		"to", m.ID(),
		"languages", m.Len())
	return old, nil
}

// Languages returns the loaded language identifiers in index order
func (d *Detector) Languages() []string {
	return d.model.Load().Languages()
}

// ModelID identifies the model generation currently in use
func (d *Detector) ModelID() string {
	return d.model.Load().ID()
}
