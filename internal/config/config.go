// Package config loads and saves keyvibes settings. Values come from
// ~/.keyvibes/settings.json, overridden by KEYVIBES_* environment
// variables; a .env file in the working directory is honored too.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultVolume = 0.5

	envHome      = "KEYVIBES_HOME"
	envPack      = "KEYVIBES_PACK"
	envVolume    = "KEYVIBES_VOLUME"
	envEnabled   = "KEYVIBES_ENABLED"
	envSoundsDir = "KEYVIBES_SOUNDS_DIR"
	envDriver    = "KEYVIBES_DRIVER"
)

// Settings is the structure of settings.json. Pointer fields distinguish
// "not configured" from an explicit zero.
type Settings struct {
	Pack      string   `json:"pack,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
	SoundsDir string   `json:"sounds_dir,omitempty"`
	Driver    string   `json:"driver,omitempty"`
}

// Resolved is the effective configuration after file, environment and
// defaults have been merged.
type Resolved struct {
	Pack      string
	Volume    float64
	Enabled   bool
	SoundsDir string
	Driver    string
}

// Dir returns the keyvibes home directory, $KEYVIBES_HOME or ~/.keyvibes.
func Dir() string {
	if dir := os.Getenv(envHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keyvibes"
	}
	return filepath.Join(home, ".keyvibes")
}

func SettingsPath() string {
	return filepath.Join(Dir(), "settings.json")
}

// Load reads settings.json. A missing file is not an error; empty
// settings are returned so defaults apply.
func Load() (*Settings, error) {
	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}
	return &s, nil
}

// Save writes settings.json, creating the home directory if needed.
func Save(s *Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(SettingsPath(), data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Resolve merges settings.json, the environment and defaults into the
// effective configuration. Environment values win over the file.
func Resolve() (*Resolved, error) {
	s, err := Load()
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Volume:    DefaultVolume,
		Enabled:   true,
		SoundsDir: filepath.Join(Dir(), "sounds"),
	}
	if s.Pack != "" {
		r.Pack = s.Pack
	}
	if s.Volume != nil {
		r.Volume = *s.Volume
	}
	if s.Enabled != nil {
		r.Enabled = *s.Enabled
	}
	if s.SoundsDir != "" {
		r.SoundsDir = s.SoundsDir
	}
	if s.Driver != "" {
		r.Driver = s.Driver
	}

	applyEnv(r)
	return r, nil
}

func applyEnv(r *Resolved) {
	_ = godotenv.Load()

	if pack := os.Getenv(envPack); pack != "" {
		r.Pack = pack
	}
	if vol := os.Getenv(envVolume); vol != "" {
		if v, err := strconv.ParseFloat(vol, 64); err == nil {
			r.Volume = v
		}
	}
	if enabled := os.Getenv(envEnabled); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			r.Enabled = v
		}
	}
	if dir := os.Getenv(envSoundsDir); dir != "" {
		r.SoundsDir = dir
	}
	if driver := os.Getenv(envDriver); driver != "" {
		r.Driver = driver
	}
}
