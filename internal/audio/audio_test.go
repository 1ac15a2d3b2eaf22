package audio

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/anchorpop/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"chime.wav", true},
		{"chime.OGG", true},
		{"/usr/share/sounds/pop.mp3", true},
		{"chime.flac", false},
		{"chime", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.path))
		})
	}
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayer(quietLogger())
	assert.Equal(t, 1.0, p.Volume())

	p.SetVolume(0.25)
	assert.Equal(t, 0.25, p.Volume())

	p.SetVolume(3)
	assert.Equal(t, 1.0, p.Volume())

	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
}

func TestPlayer_Errors(t *testing.T) {
	p := NewPlayer(quietLogger())

	assert.NoError(t, p.Play(""))

	err := p.Play("notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")

	err = p.Preload(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open sound file")
}

func TestChime_Disabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audio.Sound = filepath.Join(t.TempDir(), "missing.wav")

	c := NewChime(cfg, quietLogger())
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Play())
	assert.InDelta(t, 0.8, c.player.Volume(), 1e-9)

	cfg.Audio.Enabled = true
	cfg.Audio.Sound = ""
	cfg.Audio.Volume = 50
	c.UpdateConfig(cfg)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Play())
	assert.InDelta(t, 0.5, c.player.Volume(), 1e-9)
}

func TestChime_MissingFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Sound = filepath.Join(t.TempDir(), "missing.ogg")

	c := NewChime(cfg, quietLogger())
	assert.True(t, c.Enabled())

	// Preload failures are logged only
	c.Start()
	assert.Error(t, c.Play())
}
