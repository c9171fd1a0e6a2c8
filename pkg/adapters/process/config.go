package process

import (
	"fmt"
	"os"
	"time"
)

// Defaults mirror the solver's usual command line.
const (
	DefaultCommand  = "ilasp"
	DefaultProgram  = "input.las"
	DefaultTimeout  = 5 * time.Minute
	DefaultBackFile = "ilasp_config.lp"
)

// DefaultArgs selects the solver protocol version and quiet output.
var DefaultArgs = []string{"--version=4", "-q"}

// OracleConfig describes how the induction solver is executed.
type OracleConfig struct {
	Command    string            `yaml:"command" json:"command" mapstructure:"command"`
	Args       []string          `yaml:"args" json:"args" mapstructure:"args"`
	Background string            `yaml:"background" json:"background" mapstructure:"background"`
	Program    string            `yaml:"program" json:"program" mapstructure:"program"`
	Timeout    time.Duration     `yaml:"timeout" json:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Env        map[string]string `yaml:"env" json:"env" mapstructure:"env"`
}

// DefaultOracleConfig returns the configuration used when none is given.
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		Command:    DefaultCommand,
		Args:       append([]string{}, DefaultArgs...),
		Background: DefaultBackFile,
		Program:    DefaultProgram,
		Timeout:    DefaultTimeout,
	}
}

// LoadBackground reads the optional static solver fragment.
// A missing file means no extra background and is not an error.
func LoadBackground(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read solver background: %w", err)
	}
	return string(data), nil
}
