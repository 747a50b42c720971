package config

import (
	"errors"
	"fmt"
)

var knownProviders = map[string]struct{}{
	"elevenlabs": {},
	"google":     {},
	"yandex":     {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.DurationSeconds <= 0 {
		return errors.New("video.duration_seconds must be positive")
	}
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return errors.New("video.width and video.height must be positive")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	if c.Video.Preset == "" {
		return errors.New("video.preset must be set")
	}
	if c.Video.MinOutputBytes <= 0 {
		return errors.New("video.min_output_bytes must be positive")
	}
	if c.Video.EncodeTimeoutSeconds <= 0 {
		return errors.New("video.encode_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.MaxCharsPerCue <= 0 {
		return errors.New("subtitles.max_chars_per_cue must be positive")
	}
	if c.Subtitles.MaxCues <= 0 {
		return errors.New("subtitles.max_cues must be positive")
	}
	if c.Subtitles.FontSize <= 0 {
		return errors.New("subtitles.font_size must be positive")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if len(c.TTS.Order) == 0 {
		return errors.New("tts.order must list at least one provider")
	}
	for _, name := range c.TTS.Order {
		if _, ok := knownProviders[name]; !ok {
			return fmt.Errorf("tts.order: unknown provider %q", name)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.SweepIntervalMinutes <= 0 {
		return errors.New("workflow.sweep_interval_minutes must be positive")
	}
	if c.Workflow.StaleAfterMinutes <= 0 {
		return errors.New("workflow.stale_after_minutes must be positive")
	}
	return nil
}
