package cache

import (
	"encoding/json"
	"fmt"
	"os"
)

// AddressBits is the width of a simulated memory address.
const AddressBits = 64

// MaxLines bounds the number of lines (sets times ways) a simulator will
// allocate.
const MaxLines = 1 << maxSetBits

const maxSetBits = 26

// Config holds the cache geometry. It is fixed for the whole run.
type Config struct {
	// SetBits is s, the number of set index bits. The cache has 2^s sets.
	// Zero denotes a single, fully associative set.
	SetBits int `json:"set_bits"`

	// Associativity is E, the number of lines per set.
	Associativity int `json:"associativity"`

	// BlockBits is b, the number of block offset bits. The block size 2^b
	// does not take part in any hit or miss decision.
	BlockBits int `json:"block_bits"`
}

// DefaultConfig returns the geometry used by the cache lab examples:
// 16 sets, direct mapped, 16-byte blocks.
func DefaultConfig() Config {
	return Config{
		SetBits:       4,
		Associativity: 1,
		BlockBits:     4,
	}
}

// NumSets returns S = 2^s.
func (c Config) NumSets() int {
	return 1 << c.SetBits
}

// BlockSize returns B = 2^b in bytes.
func (c Config) BlockSize() uint64 {
	return uint64(1) << c.BlockBits
}

// NumLines returns the total number of lines in the cache.
func (c Config) NumLines() int {
	return c.NumSets() * c.Associativity
}

// Decode splits addr into its tag and set index under this geometry.
func (c Config) Decode(addr uint64) (tag uint64, setIndex int) {
	return Decode(addr, c.SetBits, c.BlockBits)
}

// ConfigError reports a cache geometry that the simulator refuses to run
// with.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cache config: %s=%d: %s",
		e.Field, e.Value, e.Reason)
}

// Validate checks that the geometry can be simulated.
func (c Config) Validate() error {
	if c.SetBits < 0 {
		return &ConfigError{"set_bits", c.SetBits, "must be >= 0"}
	}
	if c.BlockBits < 0 {
		return &ConfigError{"block_bits", c.BlockBits, "must be >= 0"}
	}
	if c.Associativity < 1 {
		return &ConfigError{"associativity", c.Associativity, "must be >= 1"}
	}
	if c.SetBits+c.BlockBits > AddressBits {
		return &ConfigError{"set_bits", c.SetBits,
			fmt.Sprintf("set_bits + block_bits must be <= %d", AddressBits)}
	}
	if c.SetBits > maxSetBits {
		return &ConfigError{"set_bits", c.SetBits,
			fmt.Sprintf("cache would hold more than %d lines", MaxLines)}
	}
	if c.Associativity > MaxLines>>c.SetBits {
		return &ConfigError{"associativity", c.Associativity,
			fmt.Sprintf("cache would hold more than %d lines", MaxLines)}
	}

	return nil
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read cache config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse cache config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}
