package config

const (
	defaultUploadsDir = "~/.local/share/clipforge/uploads"
	defaultOutputDir  = "~/.local/share/clipforge/output"
	defaultLogDir     = "~/.local/share/clipforge/logs"
	defaultAPIBind    = "127.0.0.1:7512"

	defaultDurationSeconds      = 15
	defaultFrameWidth           = 720
	defaultFrameHeight          = 1280
	defaultCRF                  = 23
	defaultPreset               = "fast"
	defaultAudioBitrate         = "128k"
	defaultMinOutputBytes       = 1024
	defaultOutputRetainSeconds  = 60
	defaultAudioRetainSeconds   = 30
	defaultEncodeTimeoutSeconds = 300

	defaultMaxCharsPerCue    = 45
	defaultMaxCues           = 6
	defaultSubtitleFontName  = "Arial"
	defaultSubtitleFontSize  = 16
	defaultSubtitleMarginV   = 50

	defaultElevenLabsBaseURL       = "https://api.elevenlabs.io/v1"
	defaultElevenLabsMaleVoiceID   = "pNInz6obpgDQGcFmaJgB"
	defaultElevenLabsFemaleVoiceID = "EXAVITQu4vr4xnSDxMaL"
	defaultGoogleTTSBaseURL        = "https://text-to-speech-api.vercel.app/api/tts"
	defaultYandexBaseURL           = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"
	defaultYandexMaleVoice         = "filipp"
	defaultYandexFemaleVoice       = "alena"
	defaultProviderTimeoutSeconds  = 30

	defaultSweepIntervalMinutes = 10
	defaultStaleAfterMinutes    = 60

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadsDir: defaultUploadsDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Video: Video{
			DurationSeconds:      defaultDurationSeconds,
			Width:                defaultFrameWidth,
			Height:               defaultFrameHeight,
			CRF:                  defaultCRF,
			Preset:               defaultPreset,
			AudioBitrate:         defaultAudioBitrate,
			MinOutputBytes:       defaultMinOutputBytes,
			OutputRetainSeconds:  defaultOutputRetainSeconds,
			AudioRetainSeconds:   defaultAudioRetainSeconds,
			EncodeTimeoutSeconds: defaultEncodeTimeoutSeconds,
		},
		Subtitles: Subtitles{
			MaxCharsPerCue: defaultMaxCharsPerCue,
			MaxCues:        defaultMaxCues,
			FontName:       defaultSubtitleFontName,
			FontSize:       defaultSubtitleFontSize,
			MarginV:        defaultSubtitleMarginV,
		},
		TTS: TTS{
			Order: []string{"elevenlabs", "google", "yandex"},
			ElevenLabs: ElevenLabs{
				BaseURL:        defaultElevenLabsBaseURL,
				MaleVoiceID:    defaultElevenLabsMaleVoiceID,
				FemaleVoiceID:  defaultElevenLabsFemaleVoiceID,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
			},
			Google: GoogleTTS{
				BaseURL:        defaultGoogleTTSBaseURL,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
			},
			Yandex: Yandex{
				BaseURL:        defaultYandexBaseURL,
				MaleVoice:      defaultYandexMaleVoice,
				FemaleVoice:    defaultYandexFemaleVoice,
				TimeoutSeconds: defaultProviderTimeoutSeconds,
			},
		},
		Workflow: Workflow{
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
			StaleAfterMinutes:    defaultStaleAfterMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
