// Package config loads the settings of an inference run from a YAML or JSON file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/gleaner/internal/irl"
	"github.com/aretw0/gleaner/internal/runtime"
	"github.com/aretw0/gleaner/pkg/adapters/process"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named. It may be absent.
const DefaultPath = "gleaner.yaml"

// ErrInvalidConfig is returned when a config file does not pass validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Checkpoint backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds every setting of a run. CLI flags override file values.
type Config struct {
	Model         string `yaml:"model" json:"model" validate:"required,dataext"`
	Trajectories  string `yaml:"trajectories" json:"trajectories" validate:"required"`
	Pegs          int    `yaml:"pegs" json:"pegs" validate:"gte=2,lte=9"`
	Disks         int    `yaml:"disks" json:"disks" validate:"gte=1,lte=8"`
	Horizon       int    `yaml:"horizon" json:"horizon" validate:"gte=0"`
	MaxIterations int    `yaml:"max_iterations" json:"max_iterations" validate:"gte=1"`
	RunID         string `yaml:"run_id" json:"run_id"`

	Oracle process.OracleConfig `yaml:"oracle" json:"oracle"`
	Verify bool                 `yaml:"verify" json:"verify"`

	Checkpoint  CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`
	Journal     string           `yaml:"journal" json:"journal"`
	MetricsAddr string           `yaml:"metrics_addr" json:"metrics_addr" validate:"omitempty,hostname_port"`
	LogLevel    string           `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// CheckpointConfig selects where run checkpoints are kept.
type CheckpointConfig struct {
	Backend  string        `yaml:"backend" json:"backend" validate:"oneof=none memory file redis"`
	Dir      string        `yaml:"dir" json:"dir"`
	RedisURL string        `yaml:"redis_url" json:"redis_url" validate:"required_if=Backend redis"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" validate:"gte=0"`
	LockTTL  time.Duration `yaml:"lock_ttl" json:"lock_ttl" validate:"gte=0"`
}

// Default returns the settings of the three-peg, three-disk puzzle.
func Default() *Config {
	return &Config{
		Model:         "T_prob.npy",
		Trajectories:  "expert_trajectories.json",
		Pegs:          3,
		Disks:         3,
		Horizon:       irl.SolverHorizon,
		MaxIterations: runtime.DefaultMaxIterations,
		Oracle:        process.DefaultOracleConfig(),
		Verify:        true,
		Checkpoint: CheckpointConfig{
			Backend: BackendFile,
			Dir:     ".gleaner/runs",
			LockTTL: time.Hour,
		},
		LogLevel: "info",
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("dataext", validateDataExt)
}

// validateDataExt accepts the transition model formats the dataset loader reads.
func validateDataExt(fl validator.FieldLevel) bool {
	switch strings.ToLower(filepath.Ext(fl.Field().String())) {
	case ".npy", ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads path over the defaults. A missing file is an error unless path
// is DefaultPath. Relative paths inside the file are resolved against the
// file's directory. JSON files are read by the YAML decoder, so durations may
// be written as "5m" in both formats.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) resolve(base string) {
	if base == "." || base == "" {
		return
	}
	for _, p := range []*string{&c.Model, &c.Trajectories, &c.Oracle.Background, &c.Journal, &c.Checkpoint.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
