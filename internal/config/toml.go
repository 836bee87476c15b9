// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Generate GenerateConfig `toml:"generate"`
	Store    StoreConfig    `toml:"store"`
}

// GenerateConfig maps generation settings. Nil fields are unset and leave
// the flag defaults alone.
type GenerateConfig struct {
	Count         *int    `toml:"count"`
	Digits        *int    `toml:"digits"`
	Columns       *int    `toml:"columns"`
	MinSegments   *int    `toml:"min-segments"`
	MaxSegments   *int    `toml:"max-segments"`
	Cutoff        *int    `toml:"cutoff"`
	Workers       *int    `toml:"workers"`
	Vowels        *string `toml:"vowels"`
	DigitAlphabet *string `toml:"digit-alphabet"`
	Table         *string `toml:"table"`
}

// StoreConfig maps table store settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
