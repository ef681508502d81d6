package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for the arithmetic opcodes.
type TimingConfig struct {
	// AddLatency is the execution latency of ADD. Default: 2 cycles.
	AddLatency uint64 `json:"add_latency"`

	// SubLatency is the execution latency of SUB. Default: 2 cycles.
	SubLatency uint64 `json:"sub_latency"`

	// MulLatency is the execution latency of MUL. Default: 10 cycles.
	MulLatency uint64 `json:"mul_latency"`

	// DivLatency is the execution latency of DIV. Default: 40 cycles.
	DivLatency uint64 `json:"div_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		AddLatency: 2,
		SubLatency: 2,
		MulLatency: 10,
		DivLatency: 40,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
// A zero latency would let a unit broadcast in the cycle it dispatches.
func (c *TimingConfig) Validate() error {
	if c.AddLatency == 0 {
		return fmt.Errorf("add_latency must be > 0")
	}
	if c.SubLatency == 0 {
		return fmt.Errorf("sub_latency must be > 0")
	}
	if c.MulLatency == 0 {
		return fmt.Errorf("mul_latency must be > 0")
	}
	if c.DivLatency == 0 {
		return fmt.Errorf("div_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
