package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/langid/pkg/langid/internalerr"
	"github.com/cognicore/langid/pkg/langid/profile"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Profiles.validate(); err != nil {
		return fmt.Errorf("%w: profiles: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := c.Detector.validate(); err != nil {
		return fmt.Errorf("%w: detector: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := c.Ranking.validate(); err != nil {
		return fmt.Errorf("%w: ranking: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("%w: log: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

func (p *ProfilesConfig) validate() error {
	if p.Dir == "" && p.Database == "" && p.Snapshot == "" {
		return fmt.Errorf("one of dir, database or snapshot must be set")
	}
	mode, err := profile.ParseMode(p.Mode)
	if err != nil {
		return err
	}
	if p.ReloadInterval < 0 {
		return fmt.Errorf("reload_interval must be >= 0 (got %s)", p.ReloadInterval)
	}
	if p.ReloadInterval > 0 && (mode != profile.ModeTimestamped || p.Dir == "") {
		return fmt.Errorf("reload_interval needs a timestamped dir")
	}
	return nil
}

func (d *DetectorConfig) validate() error {
	if err := finite(map[string]float64{
		"alpha":                 d.Alpha,
		"alpha_width":           d.AlphaWidth,
		"convergence_threshold": d.ConvergenceThreshold,
		"epsilon":               d.Epsilon,
	}); err != nil {
		return err
	}
	if d.Alpha < 0 {
		return fmt.Errorf("alpha must be >= 0 (got %v)", d.Alpha)
	}
	if d.AlphaWidth < 0 {
		return fmt.Errorf("alpha_width must be >= 0 (got %v)", d.AlphaWidth)
	}
	if d.Trials <= 0 {
		return fmt.Errorf("trials must be > 0 (got %d)", d.Trials)
	}
	if d.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be > 0 (got %d)", d.MaxIterations)
	}
	if d.ConvergenceThreshold <= 0 || d.ConvergenceThreshold > 1 {
		return fmt.Errorf("convergence_threshold must be in (0, 1] (got %v)", d.ConvergenceThreshold)
	}
	if d.Epsilon < 0 {
		return fmt.Errorf("epsilon must be >= 0 (got %v)", d.Epsilon)
	}
	if d.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0 (got %d)", d.Parallelism)
	}
	if d.MaxTextLength < 0 {
		return fmt.Errorf("max_text_length must be >= 0 (got %d)", d.MaxTextLength)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %s)", d.Timeout)
	}
	return nil
}

func (r *RankingConfig) validate() error {
	if err := finite(map[string]float64{
		"threshold":      r.Threshold,
		"min_confidence": r.MinConfidence,
	}); err != nil {
		return err
	}
	if r.Threshold < 0 || r.Threshold >= 1 {
		return fmt.Errorf("threshold must be in [0, 1) (got %v)", r.Threshold)
	}
	if r.MinConfidence < 0 || r.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1] (got %v)", r.MinConfidence)
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("format must be text or json (got %q)", l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", l.Level)
	}
	return nil
}

func finite(fields map[string]float64) error {
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number (got %v)", name, v)
		}
	}
	return nil
}
