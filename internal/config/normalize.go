package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.UploadsDir) == "" {
		c.Paths.UploadsDir = defaultUploadsDir
	}
	if c.Paths.UploadsDir, err = expandPath(c.Paths.UploadsDir); err != nil {
		return fmt.Errorf("paths.uploads_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeTTS() {
	if len(c.TTS.Order) == 0 {
		c.TTS.Order = []string{"elevenlabs", "google", "yandex"}
	}
	for i, name := range c.TTS.Order {
		c.TTS.Order[i] = strings.ToLower(strings.TrimSpace(name))
	}
	c.TTS.ElevenLabs.BaseURL = strings.TrimRight(strings.TrimSpace(c.TTS.ElevenLabs.BaseURL), "/")
	if c.TTS.ElevenLabs.BaseURL == "" {
		c.TTS.ElevenLabs.BaseURL = defaultElevenLabsBaseURL
	}
	c.TTS.Google.BaseURL = strings.TrimSpace(c.TTS.Google.BaseURL)
	if c.TTS.Google.BaseURL == "" {
		c.TTS.Google.BaseURL = defaultGoogleTTSBaseURL
	}
	c.TTS.Yandex.BaseURL = strings.TrimSpace(c.TTS.Yandex.BaseURL)
	if c.TTS.Yandex.BaseURL == "" {
		c.TTS.Yandex.BaseURL = defaultYandexBaseURL
	}
	if c.TTS.ElevenLabs.TimeoutSeconds <= 0 {
		c.TTS.ElevenLabs.TimeoutSeconds = defaultProviderTimeoutSeconds
	}
	if c.TTS.Google.TimeoutSeconds <= 0 {
		c.TTS.Google.TimeoutSeconds = defaultProviderTimeoutSeconds
	}
	if c.TTS.Yandex.TimeoutSeconds <= 0 {
		c.TTS.Yandex.TimeoutSeconds = defaultProviderTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
