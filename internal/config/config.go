// Package config loads the optional noteworm configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional noteworm configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults for backup. Nil means the
// key was absent.
type DefaultsConfig struct {
	Workers     *int     `toml:"workers"`
	Compare     *string  `toml:"compare"`
	Verify      *bool    `toml:"verify"`
	Lenient     *bool    `toml:"lenient"`
	KeepGoing   *bool    `toml:"keep_going"`
	Destination *string  `toml:"destination"`
	BWLimit     *string  `toml:"bwlimit"`
	Rules       *string  `toml:"rules"`
	Protect     []string `toml:"protect"`
	Exclude     []string `toml:"exclude"`
}

// ThemeConfig holds optional colour names for the decision trail, such as
// "green" or "hiyellow".
type ThemeConfig struct {
	Copy   *string `toml:"copy"`
	Skip   *string `toml:"skip"`
	Delete *string `toml:"delete"`
	Fail   *string `toml:"fail"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "noteworm", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero
// Config; unknown keys are rejected so typos surface.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
