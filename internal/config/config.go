// Package config loads the brainmap TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds brainmap configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Log     LogConfig     `toml:"log"`
	Export  ExportConfig  `toml:"export"`
	UI      UIConfig      `toml:"ui"`
}

// StorageConfig locates the database.
type StorageConfig struct {
	Database string `toml:"database"`
}

// CanvasConfig tunes the camera and the animator.
type CanvasConfig struct {
	ZoomMin       float64 `toml:"zoom_min"`
	ZoomMax       float64 `toml:"zoom_max"`
	WheelFactor   float64 `toml:"wheel_factor"`
	ButtonFactor  float64 `toml:"button_factor"`
	Stiffness     float64 `toml:"stiffness"`
	Damping       float64 `toml:"damping"`
	ShowMinimap   bool    `toml:"show_minimap"`
	HideCollapsed bool    `toml:"hide_collapsed"`
	DoubleClickMS int     `toml:"double_click_ms"`
}

// LogConfig controls the log file. An empty file disables logging.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// ExportConfig controls image exports.
type ExportConfig struct {
	SaveDirectory string `toml:"save_directory"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
}

// UIConfig controls the terminal host.
type UIConfig struct {
	Confirmations bool `toml:"confirmations"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Database: filepath.Join(DataDir(), "brainmap.db")},
		Canvas: CanvasConfig{
			ZoomMin:       0.1,
			ZoomMax:       3.0,
			WheelFactor:   1.08,
			ButtonFactor:  1.2,
			Stiffness:     0.1,
			Damping:       0.6,
			ShowMinimap:   true,
			DoubleClickMS: 400,
		},
		Log:    LogConfig{Level: "info"},
		Export: ExportConfig{Width: 1600, Height: 1000},
		UI:     UIConfig{Confirmations: true},
	}
}

// ConfigDir returns the brainmap config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "brainmap")
}

// DataDir returns the directory holding the default database.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "brainmap")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path over the defaults. A missing file is
// not an error. An empty path means Path().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.Storage.Database = ExpandHome(cfg.Storage.Database)
	cfg.Log.File = ExpandHome(cfg.Log.File)
	cfg.Export.SaveDirectory = ExpandHome(cfg.Export.SaveDirectory)
	cfg.Validate()
	return cfg, nil
}

// Save writes the config to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate replaces nonsensical canvas values with their defaults.
func (c *Config) Validate() {
	d := Default().Canvas
	cv := &c.Canvas
	if cv.ZoomMin <= 0 {
		cv.ZoomMin = d.ZoomMin
	}
	if cv.ZoomMax < cv.ZoomMin {
		cv.ZoomMax = max(d.ZoomMax, cv.ZoomMin)
	}
	if cv.WheelFactor <= 1 {
		cv.WheelFactor = d.WheelFactor
	}
	if cv.ButtonFactor <= 1 {
		cv.ButtonFactor = d.ButtonFactor
	}
	if cv.Stiffness <= 0 {
		cv.Stiffness = d.Stiffness
	}
	if cv.Damping <= 0 || cv.Damping >= 1 {
		cv.Damping = d.Damping
	}
	if cv.DoubleClickMS <= 0 {
		cv.DoubleClickMS = d.DoubleClickMS
	}
	if c.Export.Width <= 0 {
		c.Export.Width = Default().Export.Width
	}
	if c.Export.Height <= 0 {
		c.Export.Height = Default().Export.Height
	}
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetSavePath places filename in the export directory unless it already
// names a directory of its own.
func (c *Config) GetSavePath(filename string) (string, error) {
	if c.Export.SaveDirectory == "" || filepath.IsAbs(filename) || filepath.Dir(filename) != "." {
		return filename, nil
	}
	if err := os.MkdirAll(c.Export.SaveDirectory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create save directory: %w", err)
	}
	return filepath.Join(c.Export.SaveDirectory, filename), nil
}
