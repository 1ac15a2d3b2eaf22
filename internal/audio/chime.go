package audio

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/anchorpop/internal/config"
)

// Chime plays the configured sound when a popover is shown.
type Chime struct {
	mu     sync.RWMutex
	player *Player
	logger *slog.Logger

	enabled bool
	sound   string
}

// NewChime creates a chime from the [audio] section of cfg.
func NewChime(cfg *config.Config, logger *slog.Logger) *Chime {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Chime{
		player: NewPlayer(logger),
		logger: logger,
	}
	c.apply(cfg)
	return c
}

// Start preloads the chime so the first Play has no decode delay.
func (c *Chime) Start() {
	c.mu.RLock()
	enabled, sound := c.enabled, c.sound
	c.mu.RUnlock()

	if !enabled || sound == "" {
		return
	}
	if !Supported(sound) {
		c.logger.Warn("unsupported chime format", "path", sound)
		return
	}
	if err := c.player.Preload(sound); err != nil {
		c.logger.Warn("failed to preload chime", "path", sound, "error", err)
	}
}

// Play plays the chime. It does nothing when audio is disabled or no
// sound is configured.
func (c *Chime) Play() error {
	c.mu.RLock()
	enabled, sound := c.enabled, c.sound
	c.mu.RUnlock()

	if !enabled || sound == "" {
		return nil
	}
	return c.player.Play(sound)
}

// Enabled reports whether the chime will play.
func (c *Chime) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled && c.sound != ""
}

// UpdateConfig applies a reloaded configuration.
func (c *Chime) UpdateConfig(cfg *config.Config) {
	c.player.ClearCache()
	c.apply(cfg)
	c.Start()
}

// Stop releases the audio device.
func (c *Chime) Stop() {
	c.player.Close()
}

func (c *Chime) apply(cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	c.mu.Lock()
	c.enabled = cfg.Audio.Enabled
	c.sound = cfg.SoundPath()
	c.mu.Unlock()

	c.player.SetVolume(float64(cfg.Audio.Volume) / 100)
	c.logger.Debug("chime configured", "enabled", cfg.Audio.Enabled, "sound", cfg.Audio.Sound, "volume", cfg.Audio.Volume)
}
