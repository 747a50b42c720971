package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	UploadsDir string `toml:"uploads_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Video contains the fixed encoding policy for generated clips.
type Video struct {
	DurationSeconds      int    `toml:"duration_seconds"`
	Width                int    `toml:"width"`
	Height               int    `toml:"height"`
	CRF                  int    `toml:"crf"`
	Preset               string `toml:"preset"`
	AudioBitrate         string `toml:"audio_bitrate"`
	MinOutputBytes       int64  `toml:"min_output_bytes"`
	OutputRetainSeconds  int    `toml:"output_retain_seconds"`
	AudioRetainSeconds   int    `toml:"audio_retain_seconds"`
	EncodeTimeoutSeconds int    `toml:"encode_timeout_seconds"`
}

// Subtitles contains segmentation limits and burn-in styling.
type Subtitles struct {
	MaxCharsPerCue int    `toml:"max_chars_per_cue"`
	MaxCues        int    `toml:"max_cues"`
	FontName       string `toml:"font_name"`
	FontSize       int    `toml:"font_size"`
	MarginV        int    `toml:"margin_v"`
}

// ElevenLabs contains configuration for the ElevenLabs TTS API.
type ElevenLabs struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	MaleVoiceID    string `toml:"male_voice_id"`
	FemaleVoiceID  string `toml:"female_voice_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// GoogleTTS contains configuration for the Google TTS proxy endpoint.
type GoogleTTS struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Yandex contains configuration for the Yandex SpeechKit API.
type Yandex struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	MaleVoice      string `toml:"male_voice"`
	FemaleVoice    string `toml:"female_voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS groups the narration provider settings. Providers are attempted in the
// order listed in Order; unknown names are rejected during validation.
type TTS struct {
	Order      []string   `toml:"order"`
	ElevenLabs ElevenLabs `toml:"elevenlabs"`
	Google     GoogleTTS  `toml:"google"`
	Yandex     Yandex     `toml:"yandex"`
}

// Workflow contains daemon timing configuration.
type Workflow struct {
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
	StaleAfterMinutes    int `toml:"stale_after_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipforge.
//
// Configuration sections by subsystem:
//   - Paths: uploads/output/log directories and API bind address
//   - Video: fixed clip geometry, duration, and encoder policy
//   - Subtitles: segmentation caps and burn-in style
//   - TTS: narration provider cascade order and per-provider settings
//   - Workflow: janitor sweep cadence
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Video     Video     `toml:"video"`
	Subtitles Subtitles `toml:"subtitles"`
	TTS       TTS       `toml:"tts"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized, and provider credentials filled
// from the environment when the file leaves them empty.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnv fills provider credentials from the environment. A .env file in the
// working directory is honored when present; explicit config values win.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if c.TTS.ElevenLabs.APIKey == "" {
		c.TTS.ElevenLabs.APIKey = strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY"))
	}
	if c.TTS.Yandex.APIKey == "" {
		c.TTS.Yandex.APIKey = strings.TrimSpace(os.Getenv("YANDEX_API_KEY"))
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the uploads, output, and log directories the
// pipeline expects to exist before any generation runs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadsDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ClipDuration returns the fixed clip length as a duration.
func (c *Config) ClipDuration() time.Duration {
	return time.Duration(c.Video.DurationSeconds) * time.Second
}

// OutputRetention returns how long finished videos are kept before deletion.
func (c *Config) OutputRetention() time.Duration {
	return time.Duration(c.Video.OutputRetainSeconds) * time.Second
}

// AudioRetention returns how long narration audio is kept after a successful encode.
func (c *Config) AudioRetention() time.Duration {
	return time.Duration(c.Video.AudioRetainSeconds) * time.Second
}

// EncodeTimeout bounds a single ffmpeg invocation so a hung encode cannot
// leak a process indefinitely.
func (c *Config) EncodeTimeout() time.Duration {
	return time.Duration(c.Video.EncodeTimeoutSeconds) * time.Second
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
