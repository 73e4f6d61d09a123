package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for unusable configuration.
var ErrInvalid = errors.New("invalid configuration")

const (
	envPrefix = "REVIEWSENT_"

	ScorerLexicon = "lexicon"
	ScorerRemote  = "remote"
	ScorerNone    = "none"

	chartFileName = "chart_data.json"
)

// ScorerConfig selects the polarity oracle.
type ScorerConfig struct {
	Kind        string        `yaml:"kind"`
	LexiconPath string        `yaml:"lexicon_path"`
	RemoteAddr  string        `yaml:"remote_addr"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string        `yaml:"app_env"`
	Debug                 bool          `yaml:"debug"`
	InputPaths            []string      `yaml:"input_paths"`
	OutputPath            string        `yaml:"output_path"`
	ChartOutputPath       string        `yaml:"chart_output_path"`
	TopN                  int           `yaml:"top_n"`
	TextColumn            string        `yaml:"text_column"`
	SQLiteTable           string        `yaml:"sqlite_table"`
	Scorer                ScorerConfig  `yaml:"scorer"`
	RedisAddr             string        `yaml:"redis_addr"`
	CacheTTL              time.Duration `yaml:"cache_ttl"`
	GRPCPort              int           `yaml:"grpc_port"`
	GRPCReflectionEnabled bool          `yaml:"grpc_reflection_enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AppEnv:      "development",
		InputPaths:  []string{"data_with_sentiment.csv"},
		OutputPath:  filepath.Join("public", "top_worst_reviews.json"),
		TopN:        20,
		SQLiteTable: "reviews",
		Scorer: ScorerConfig{
			Kind:    ScorerLexicon,
			Timeout: 5 * time.Second,
		},
		CacheTTL: 24 * time.Hour,
		GRPCPort: 50051,
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// when path is not empty, and REVIEWSENT_* environment variables, in that
// order of precedence. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	env := func(key string) (string, bool) {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}

	strs := map[string]*string{
		"APP_ENV":      &c.AppEnv,
		"OUTPUT":       &c.OutputPath,
		"CHART_OUTPUT": &c.ChartOutputPath,
		"TEXT_COLUMN":  &c.TextColumn,
		"SQLITE_TABLE": &c.SQLiteTable,
		"SCORER":       &c.Scorer.Kind,
		"LEXICON_PATH": &c.Scorer.LexiconPath,
		"SCORER_ADDR":  &c.Scorer.RemoteAddr,
		"REDIS_ADDR":   &c.RedisAddr,
	}
	for key, dst := range strs {
		if v, ok := env(key); ok {
			*dst = v
		}
	}

	if v, ok := env("INPUT"); ok {
		c.InputPaths = splitList(v)
	}

	ints := map[string]*int{
		"TOP_N":     &c.TopN,
		"GRPC_PORT": &c.GRPCPort,
	}
	for key, dst := range ints {
		if v, ok := env(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, envPrefix, key, v)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"DEBUG":                   &c.Debug,
		"GRPC_REFLECTION_ENABLED": &c.GRPCReflectionEnabled,
	}
	for key, dst := range bools {
		if v, ok := env(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalid, envPrefix, key, v)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"SCORER_TIMEOUT": &c.Scorer.Timeout,
		"CACHE_TTL":      &c.CacheTTL,
	}
	for key, dst := range durations {
		if v, ok := env(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q is not a duration", ErrInvalid, envPrefix, key, v)
			}
			*dst = d
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the options every command relies on.
func (c *Config) Validate() error {
	var problems []string
	if c.TopN < 1 {
		problems = append(problems, fmt.Sprintf("top_n must be positive, got %d", c.TopN))
	}
	if c.OutputPath == "" {
		problems = append(problems, "output_path is required")
	}
	switch c.Scorer.Kind {
	case ScorerLexicon, ScorerNone:
	case ScorerRemote:
		if c.Scorer.RemoteAddr == "" {
			problems = append(problems, "scorer.remote_addr is required for the remote scorer")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown scorer %q (want lexicon, remote or none)", c.Scorer.Kind))
	}
	if c.Scorer.Timeout < 0 {
		problems = append(problems, "scorer.timeout must not be negative")
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		problems = append(problems, fmt.Sprintf("grpc_port %d must be between 1 and 65535", c.GRPCPort))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ChartPath returns where the aggregate counts are written.
func (c *Config) ChartPath() string {
	if c.ChartOutputPath != "" {
		return c.ChartOutputPath
	}
	return filepath.Join(filepath.Dir(c.OutputPath), chartFileName)
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.AppEnv == "production" {
		zc = zap.NewProductionConfig()
	}
	if cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}
