package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, placement.DefaultParams(), cfg.Placement.Params())
	assert.Equal(t, placement.TerminalParams(), cfg.Terminal.Params())
	assert.Equal(t, "auto", cfg.Behavior.Presenter)
	assert.Equal(t, time.Second, cfg.Behavior.DismissTimeout.Duration())
	assert.True(t, cfg.Behavior.DismissOnTapOutside)
	assert.Equal(t, 8, cfg.Appearance.CornerRadius)
	assert.False(t, cfg.Audio.Enabled)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/anchorpop.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchorpop.toml")

	content := `
[placement]
gap = 6
margin = 12

[behavior]
presenter = "terminal"
dismiss_timeout = "250ms"
direction = "up|down"
modal = true

[appearance]
background = "#1e1e2ecc"
color_scheme = "dark"

[audio]
enabled = true
volume = 40
sound = "~/sounds/pop.wav"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6.0, cfg.Placement.Gap)
	assert.Equal(t, 12.0, cfg.Placement.Margin)
	// Unset keys keep their defaults
	assert.Equal(t, 320.0, cfg.Placement.DefaultWidth)
	assert.Equal(t, "terminal", cfg.Behavior.Presenter)
	assert.Equal(t, 250*time.Millisecond, cfg.Behavior.DismissTimeout.Duration())
	assert.Equal(t, 40, cfg.Audio.Volume)
	assert.NotContains(t, cfg.SoundPath(), "~")

	opts := cfg.DefaultOptions()
	assert.Equal(t, model.Up|model.Down, opts.ArrowDirection)
	assert.True(t, opts.IsModal)
	assert.True(t, opts.DismissOnTapOutside)
	require.NotNil(t, opts.BackgroundColor)
	assert.Equal(t, "#1e1e2ecc", opts.BackgroundColor.Hex())
}

func TestDuration_IntegerMilliseconds(t *testing.T) {
	cfg, err := Parse([]byte("[behavior]\ndismiss_timeout = 1500\n"))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Behavior.DismissTimeout.Duration())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[behavior\n"},
		{"bad duration", "[behavior]\ndismiss_timeout = \"soon\"\n"},
		{"zero timeout", "[behavior]\ndismiss_timeout = 0\n"},
		{"bad presenter", "[behavior]\npresenter = \"cocoa\"\n"},
		{"bad direction", "[behavior]\ndirection = \"sideways\"\n"},
		{"bad background", "[appearance]\nbackground = \"#zz\"\n"},
		{"bad scheme", "[appearance]\ncolor_scheme = \"sepia\"\n"},
		{"negative margin", "[placement]\nmargin = -1\n"},
		{"zero default size", "[terminal]\ndefault_width = 0\n"},
		{"loud", "[audio]\nvolume = 150\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "anchorpop.toml")

	cfg := DefaultConfig()
	cfg.Behavior.Presenter = "gtk"
	cfg.Behavior.DismissTimeout = Duration(2 * time.Second)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
