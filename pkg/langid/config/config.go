package config

import "time"

// Config is the root configuration of the detector and its tools.
type Config struct {
	Profiles ProfilesConfig `yaml:"profiles"`
	Detector DetectorConfig `yaml:"detector"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Log      LogConfig      `yaml:"log"`
}

// ProfilesConfig says where language profiles come from. At least one of
// Dir, Database and Snapshot must be set.
type ProfilesConfig struct {
	Dir      string `yaml:"dir"      env:"LANGID_PROFILES_DIR"`
	Mode     string `yaml:"mode"     env:"LANGID_PROFILES_MODE" env-default:"classic"`
	Database string `yaml:"database" env:"LANGID_PROFILES_DB"`
	Snapshot string `yaml:"snapshot" env:"LANGID_SNAPSHOT"`
	// ReloadInterval polls a timestamped Dir for newer versions in
	// long-running processes; 0 disables it.
	ReloadInterval time.Duration `yaml:"reload_interval" env:"LANGID_RELOAD_INTERVAL" env-default:"0s"`
}

// DetectorConfig tunes text normalization and the classifier.
type DetectorConfig struct {
	Alpha                float64       `yaml:"alpha"                 env:"LANGID_ALPHA"                 env-default:"0.5"`
	AlphaWidth           float64       `yaml:"alpha_width"           env:"LANGID_ALPHA_WIDTH"           env-default:"0.05"`
	Trials               int           `yaml:"trials"                env:"LANGID_TRIALS"                env-default:"7"`
	MaxIterations        int           `yaml:"max_iterations"        env:"LANGID_MAX_ITERATIONS"        env-default:"1000"`
	ConvergenceThreshold float64       `yaml:"convergence_threshold" env:"LANGID_CONVERGENCE_THRESHOLD" env-default:"0.99999"`
	Epsilon              float64       `yaml:"epsilon"               env:"LANGID_EPSILON"               env-default:"1e-9"`
	MinNGrams            int           `yaml:"min_ngrams"            env:"LANGID_MIN_NGRAMS"            env-default:"1"`
	Parallelism          int           `yaml:"parallelism"           env:"LANGID_PARALLELISM"           env-default:"1"`
	Seed                 uint64        `yaml:"seed"                  env:"LANGID_SEED"`
	Seeded               bool          `yaml:"seeded"                env:"LANGID_SEEDED"                env-default:"false"`
	MaxTextLength        int           `yaml:"max_text_length"       env:"LANGID_MAX_TEXT_LENGTH"       env-default:"10000"`
	HTML                 bool          `yaml:"html"                  env:"LANGID_HTML"                  env-default:"false"`
	Timeout              time.Duration `yaml:"timeout"               env:"LANGID_TIMEOUT"               env-default:"0s"`
}

// RankingConfig holds the result policy.
type RankingConfig struct {
	Threshold     float64 `yaml:"threshold"      env:"LANGID_THRESHOLD"      env-default:"0.1"`
	MinConfidence float64 `yaml:"min_confidence" env:"LANGID_MIN_CONFIDENCE" env-default:"0.1"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
