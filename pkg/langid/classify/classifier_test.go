package classify

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/langid/pkg/langid/internalerr"
	"github.com/cognicore/langid/pkg/langid/model"
	"github.com/cognicore/langid/pkg/langid/profile"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()
	m, err := model.Load([]profile.Record{
		{Name: "en", Freq: map[string]int{"th": 100, "he": 80, "t": 5}, NWords: []int{10, 200, 0}},
		{Name: "fr", Freq: map[string]int{"le": 90, "es": 70, "t": 10}, NWords: []int{20, 160, 0}},
	})
	require.NoError(t, err)
	return m
}

func seeded(seed uint64) Params {
	p := DefaultParams()
	p.Seeded = true
	p.Seed = seed
	return p
}

func sum(ps []float64) float64 {
	var s float64
	for _, p := range ps {
		s += p
	}
	return s
}

func TestNewRequiresModel(t *testing.T) {
	_, err := New(nil, DefaultParams())
	assert.ErrorIs(t, err, internalerr.ErrNeedProfiles)
}

func TestNewRejectsBadParams(t *testing.T) {
	m := testModel(t)

	p := DefaultParams()
	p.Alpha = -1
	_, err := New(m, p)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	p = DefaultParams()
	p.ConvergenceThreshold = 2
	_, err = New(m, p)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	for _, bad := range []func(*Params){
		func(p *Params) { p.Alpha = math.NaN() },
		func(p *Params) { p.Alpha = math.Inf(1) },
		func(p *Params) { p.AlphaWidth = math.NaN() },
		func(p *Params) { p.ConvergenceThreshold = math.NaN() },
		func(p *Params) { p.Epsilon = math.Inf(-1) },
	} {
		p := DefaultParams()
		bad(&p)
		_, err := New(m, p)
		assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
	}
}

func TestZeroParamsUseDefaults(t *testing.T) {
	c, err := New(testModel(t), Params{})
	require.NoError(t, err)
	d := DefaultParams()
	got := c.Params()
	assert.Equal(t, d.Trials, got.Trials)
	assert.Equal(t, d.MaxIterations, got.MaxIterations)
	assert.Equal(t, d.CheckInterval, got.CheckInterval)
	assert.Equal(t, d.ConvergenceThreshold, got.ConvergenceThreshold)
	assert.Equal(t, 0.0, got.Alpha, "a zero alpha is a valid choice")
}

func TestClassifyExclusiveGrams(t *testing.T) {
	c, err := New(testModel(t), seeded(1))
	require.NoError(t, err)

	res, err := c.Classify(context.Background(), []string{"th", "he", "th", "he"})
	require.NoError(t, err)
	require.Len(t, res.Probs, 2)
	assert.Greater(t, res.Probs[0], 0.9)
	assert.Less(t, res.Probs[1], 0.1)
	assert.Equal(t, 7, res.Trials)
	assert.Positive(t, res.Iterations)
	assert.False(t, res.Truncated)
}

func TestClassifyMixedTextKeepsBothLanguages(t *testing.T) {
	p := seeded(42)
	p.Trials = 50
	c, err := New(testModel(t), p)
	require.NoError(t, err)

	res, err := c.Classify(context.Background(), []string{"le", "th", "he"})
	require.NoError(t, err)
	assert.Positive(t, res.Probs[0])
	assert.Positive(t, res.Probs[1])
	assert.InDelta(t, 1.0, sum(res.Probs), 1e-9)
}

func TestClassifyIgnoresUnknownGrams(t *testing.T) {
	c, err := New(testModel(t), seeded(3))
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), []string{"zz", "qq"})
	assert.ErrorIs(t, err, internalerr.ErrNotEnoughText)

	_, err = c.Classify(context.Background(), nil)
	assert.ErrorIs(t, err, internalerr.ErrNotEnoughText)

	res, err := c.Classify(context.Background(), []string{"zz", "le", "qq"})
	require.NoError(t, err)
	assert.Greater(t, res.Probs[1], 0.9)
}

func TestClassifyMinNGrams(t *testing.T) {
	p := seeded(3)
	p.MinNGrams = 3
	c, err := New(testModel(t), p)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), []string{"th", "he"})
	assert.ErrorIs(t, err, internalerr.ErrNotEnoughText)

	_, err = c.Classify(context.Background(), []string{"th", "he", "th"})
	assert.NoError(t, err)
}

func TestClassifySeededIsDeterministic(t *testing.T) {
	grams := []string{"le", "th", "he", "t", "es"}
	c, err := New(testModel(t), seeded(7))
	require.NoError(t, err)

	first, err := c.Classify(context.Background(), grams)
	require.NoError(t, err)
	for range 5 {
		again, err := c.Classify(context.Background(), grams)
		require.NoError(t, err)
		assert.Equal(t, first.Probs, again.Probs)
	}
}

func TestClassifyParallelMatchesSequential(t *testing.T) {
	grams := []string{"le", "th", "he", "t", "es", "le"}
	m := testModel(t)

	seq, err := New(m, seeded(11))
	require.NoError(t, err)
	p := seeded(11)
	p.Parallelism = 4
	par, err := New(m, p)
	require.NoError(t, err)

	a, err := seq.Classify(context.Background(), grams)
	require.NoError(t, err)
	b, err := par.Classify(context.Background(), grams)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestClassifyCustomSource(t *testing.T) {
	p := DefaultParams()
	p.NewSource = func() rand.Source { return rand.NewPCG(5, 6) }
	c, err := New(testModel(t), p)
	require.NoError(t, err)

	grams := []string{"le", "th"}
	a, err := c.Classify(context.Background(), grams)
	require.NoError(t, err)
	b, err := c.Classify(context.Background(), grams)
	require.NoError(t, err)
	assert.Equal(t, a.Probs, b.Probs)
}

func TestClassifyProbabilitiesAreBounded(t *testing.T) {
	c, err := New(testModel(t), DefaultParams())
	require.NoError(t, err)

	for _, grams := range [][]string{{"t"}, {"le", "th"}, {"he", "es", "t", "t"}} {
		res, err := c.Classify(context.Background(), grams)
		require.NoError(t, err)
		for _, p := range res.Probs {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
		assert.LessOrEqual(t, sum(res.Probs), 1.0+1e-9)
	}
}

func TestClassifyUninformativeGram(t *testing.T) {
	// "t" has the same probability in both profiles.
	c, err := New(testModel(t), seeded(9))
	require.NoError(t, err)

	res, err := c.Classify(context.Background(), []string{"t"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, res.Probs, 1e-9)
}

func TestClassifyCancelledBeforeStart(t *testing.T) {
	c, err := New(testModel(t), seeded(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := c.Classify(ctx, []string{"th", "he"})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Zero(t, res.Trials)
	assert.Equal(t, []float64{0.5, 0.5}, res.Probs)
}

func TestSetAlpha(t *testing.T) {
	c, err := New(testModel(t), seeded(1))
	require.NoError(t, err)

	require.NoError(t, c.SetAlpha(2))
	assert.Equal(t, 2.0, c.Params().Alpha)
	require.NoError(t, c.SetAlpha(-1))
	assert.Equal(t, 0.0, c.Params().Alpha)

	require.NoError(t, c.SetAlpha(0.5))
	assert.ErrorIs(t, c.SetAlpha(math.NaN()), internalerr.ErrInvalidConfig)
	assert.ErrorIs(t, c.SetAlpha(math.Inf(1)), internalerr.ErrInvalidConfig)
	assert.Equal(t, 0.5, c.Params().Alpha)

	// Without smoothing an exclusive gram zeroes the other language.
	p := seeded(1)
	p.AlphaWidth = 0
	c, err = New(testModel(t), p)
	require.NoError(t, err)
	require.NoError(t, c.SetAlpha(0))
	res, err := c.Classify(context.Background(), []string{"th"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Probs[1])
}

func TestNormalize(t *testing.T) {
	p := []float64{1, 3}
	top, ok := normalize(p)
	assert.True(t, ok)
	assert.Equal(t, 0.75, top)
	assert.Equal(t, []float64{0.25, 0.75}, p)

	p = []float64{0, 0}
	top, ok = normalize(p)
	assert.False(t, ok)
	assert.Equal(t, 0.5, top)
	assert.Equal(t, []float64{0.5, 0.5}, p)
}
