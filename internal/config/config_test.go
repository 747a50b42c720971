package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	t.Setenv("YANDEX_API_KEY", "ya-key")
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantUploads := filepath.Join(tempHome, ".local", "share", "clipforge", "uploads")
	if cfg.Paths.UploadsDir != wantUploads {
		t.Fatalf("unexpected uploads dir: got %q want %q", cfg.Paths.UploadsDir, wantUploads)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7512" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Video.DurationSeconds != 15 {
		t.Fatalf("unexpected clip duration: %d", cfg.Video.DurationSeconds)
	}
	if cfg.Video.Width != 720 || cfg.Video.Height != 1280 {
		t.Fatalf("unexpected frame size: %dx%d", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Subtitles.MaxCharsPerCue != 45 || cfg.Subtitles.MaxCues != 6 {
		t.Fatalf("unexpected subtitle caps: %d/%d", cfg.Subtitles.MaxCharsPerCue, cfg.Subtitles.MaxCues)
	}
	if got := cfg.TTS.ElevenLabs.APIKey; got != "el-key" {
		t.Fatalf("expected ElevenLabs key from env, got %q", got)
	}
	if got := cfg.TTS.Yandex.APIKey; got != "ya-key" {
		t.Fatalf("expected Yandex key from env, got %q", got)
	}
	if want := []string{"elevenlabs", "google", "yandex"}; strings.Join(cfg.TTS.Order, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected provider order: %v", cfg.TTS.Order)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.UploadsDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "clipforge.toml")
	content := `
[paths]
uploads_dir = "` + filepath.Join(dir, "up") + `"
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[video]
duration_seconds = 15
crf = 18

[tts]
order = ["Google", " yandex "]

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config loaded from %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Video.CRF != 18 {
		t.Fatalf("unexpected crf: %d", cfg.Video.CRF)
	}
	if cfg.TTS.Order[0] != "google" || cfg.TTS.Order[1] != "yandex" {
		t.Fatalf("expected provider names lowercased, got %v", cfg.TTS.Order)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected log format normalized, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero duration", func(c *config.Config) { c.Video.DurationSeconds = 0 }},
		{"negative crf", func(c *config.Config) { c.Video.CRF = -1 }},
		{"zero cue cap", func(c *config.Config) { c.Subtitles.MaxCues = 0 }},
		{"empty provider order", func(c *config.Config) { c.TTS.Order = nil }},
		{"unknown provider", func(c *config.Config) { c.TTS.Order = []string{"polly"} }},
		{"zero sweep interval", func(c *config.Config) { c.Workflow.SweepIntervalMinutes = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[video]") {
		t.Fatalf("expected sample to contain [video] section")
	}
}
