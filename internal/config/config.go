// Package config loads the anchorpop configuration.
// Loaded from ~/.config/anchorpop/anchorpop.toml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "500ms", "1s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Plain integers are milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '1s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the configuration for anchorpop and anchorpopd.
type Config struct {
	Placement  PlacementConfig  `toml:"placement"`
	Terminal   PlacementConfig  `toml:"terminal"` // Placement in character cells
	Behavior   BehaviorConfig   `toml:"behavior"`
	Appearance AppearanceConfig `toml:"appearance"`
	Audio      AudioConfig      `toml:"audio"`
}

// PlacementConfig holds placement engine tunables.
type PlacementConfig struct {
	Gap           float64 `toml:"gap"`            // Space between anchor and popover
	Margin        float64 `toml:"margin"`         // Minimum distance from the display edge
	DefaultWidth  float64 `toml:"default_width"`  // Used when content cannot be measured
	DefaultHeight float64 `toml:"default_height"` // Used when content cannot be measured
	ArrowSize     float64 `toml:"arrow_size"`
}

// Params converts the section to placement parameters.
func (p PlacementConfig) Params() placement.Params {
	return placement.Params{
		Gap:         p.Gap,
		Margin:      p.Margin,
		DefaultSize: model.Size{Width: p.DefaultWidth, Height: p.DefaultHeight},
		ArrowSize:   p.ArrowSize,
	}
}

func placementConfigFrom(p placement.Params) PlacementConfig {
	return PlacementConfig{
		Gap:           p.Gap,
		Margin:        p.Margin,
		DefaultWidth:  p.DefaultSize.Width,
		DefaultHeight: p.DefaultSize.Height,
		ArrowSize:     p.ArrowSize,
	}
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	Presenter           string   `toml:"presenter"`              // "auto", "gtk", "terminal" or "headless"
	DismissTimeout      Duration `toml:"dismiss_timeout"`        // How long to wait for the presenter to confirm a dismissal
	Direction           string   `toml:"direction"`              // Default arrow direction, e.g. "any" or "up|down"
	DismissOnTapOutside bool     `toml:"dismiss_on_tap_outside"` // Default light dismissal
	Modal               bool     `toml:"modal"`                  // Default modality
}

// AppearanceConfig contains appearance settings.
type AppearanceConfig struct {
	Theme        string `toml:"theme"`         // Bundled theme name or a file in ~/.config/anchorpop/themes
	Background   string `toml:"background"`    // "#rrggbb[aa]", empty follows the color scheme
	ColorScheme  string `toml:"color_scheme"`  // "system", "light", or "dark"
	CornerRadius int    `toml:"corner_radius"` // Pixels
	Monitor      int    `toml:"monitor"`       // 0 = primary/first, 1+ = specific monitor
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	Sound   string `toml:"sound"`  // Chime played on show, empty = none
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// ValidPresenters returns the presenter names accepted in [behavior].
func ValidPresenters() []string {
	return []string{"auto", "gtk", "terminal", "headless"}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Placement: placementConfigFrom(placement.DefaultParams()),
		Terminal:  placementConfigFrom(placement.TerminalParams()),
		Behavior: BehaviorConfig{
			Presenter:           "auto",
			DismissTimeout:      Duration(time.Second),
			Direction:           "any",
			DismissOnTapOutside: true,
			Modal:               false,
		},
		Appearance: AppearanceConfig{
			Theme:        "default",
			ColorScheme:  string(ColorSchemeSystem),
			CornerRadius: 8,
			Monitor:      0,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
	}
}

// DefaultPath returns the path to the config file.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "anchorpop", "anchorpop.toml"), nil
}

// Load loads the configuration from path, or from DefaultPath when path is
// empty. A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse overlays TOML data on the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path atomically.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		p    PlacementConfig
	}{
		{"placement", c.Placement},
		{"terminal", c.Terminal},
	}
	for _, s := range sections {
		if s.p.Gap < 0 || s.p.Margin < 0 || s.p.ArrowSize < 0 {
			return fmt.Errorf("[%s] gap, margin and arrow_size must not be negative", s.name)
		}
		if s.p.DefaultWidth <= 0 || s.p.DefaultHeight <= 0 {
			return fmt.Errorf("[%s] default_width and default_height must be positive", s.name)
		}
	}

	validPresenter := false
	for _, p := range ValidPresenters() {
		if c.Behavior.Presenter == p {
			validPresenter = true
			break
		}
	}
	if !validPresenter {
		return fmt.Errorf("invalid presenter %q, must be one of: %v", c.Behavior.Presenter, ValidPresenters())
	}

	if c.Behavior.DismissTimeout <= 0 {
		return fmt.Errorf("dismiss_timeout must be positive, got %s", c.Behavior.DismissTimeout.Duration())
	}

	if _, err := model.ParseArrowDirection(c.Behavior.Direction); err != nil {
		return fmt.Errorf("invalid direction: %w", err)
	}

	if c.Appearance.Background != "" {
		if _, err := model.ParseColor(c.Appearance.Background); err != nil {
			return fmt.Errorf("invalid background: %w", err)
		}
	}

	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Appearance.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Appearance.ColorScheme, ValidColorSchemes())
	}

	if c.Appearance.CornerRadius < 0 {
		return fmt.Errorf("corner_radius must not be negative, got %d", c.Appearance.CornerRadius)
	}
	if c.Appearance.Monitor < 0 {
		return fmt.Errorf("monitor must not be negative, got %d", c.Appearance.Monitor)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	return nil
}

// DefaultOptions returns popover options built from [behavior] and [appearance].
// Validate must have passed.
func (c *Config) DefaultOptions() model.Options {
	dir, _ := model.ParseArrowDirection(c.Behavior.Direction)
	opts := model.NewOptions(
		model.WithArrow(dir),
		model.WithDismissOnTapOutside(c.Behavior.DismissOnTapOutside),
		model.WithModal(c.Behavior.Modal),
	)
	if c.Appearance.Background != "" {
		if bg, err := model.ParseColor(c.Appearance.Background); err == nil {
			opts.BackgroundColor = &bg
		}
	}
	return opts
}

// SoundPath returns the chime path with ~ expanded.
func (c *Config) SoundPath() string {
	return expandPath(c.Audio.Sound)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
