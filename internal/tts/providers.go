package tts

import (
	"context"
	"fmt"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/services/elevenlabs"
	"clipforge/internal/services/googletts"
	"clipforge/internal/services/yandex"
)

// ElevenLabsProvider adapts the ElevenLabs client to the cascade. The voice
// mapping to ElevenLabs voice ids is provider-local configuration.
type ElevenLabsProvider struct {
	client        *elevenlabs.Client
	maleVoiceID   string
	femaleVoiceID string
}

func NewElevenLabsProvider(client *elevenlabs.Client, maleVoiceID, femaleVoiceID string) *ElevenLabsProvider {
	return &ElevenLabsProvider{client: client, maleVoiceID: maleVoiceID, femaleVoiceID: femaleVoiceID}
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

func (p *ElevenLabsProvider) TryGenerate(ctx context.Context, text string, voice Voice) ([]byte, error) {
	voiceID := p.femaleVoiceID
	if voice == VoiceMale {
		voiceID = p.maleVoiceID
	}
	return p.client.Synthesize(ctx, text, voiceID)
}

// GoogleProvider adapts the Google TTS proxy, which takes the abstract voice
// name directly.
type GoogleProvider struct {
	client *googletts.Client
}

func NewGoogleProvider(client *googletts.Client) *GoogleProvider {
	return &GoogleProvider{client: client}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) TryGenerate(ctx context.Context, text string, voice Voice) ([]byte, error) {
	return p.client.Synthesize(ctx, text, string(voice))
}

// YandexProvider adapts Yandex SpeechKit with its named speakers.
type YandexProvider struct {
	client      *yandex.Client
	maleVoice   string
	femaleVoice string
}

func NewYandexProvider(client *yandex.Client, maleVoice, femaleVoice string) *YandexProvider {
	return &YandexProvider{client: client, maleVoice: maleVoice, femaleVoice: femaleVoice}
}

func (p *YandexProvider) Name() string { return "yandex" }

func (p *YandexProvider) TryGenerate(ctx context.Context, text string, voice Voice) ([]byte, error) {
	speaker := p.femaleVoice
	if voice == VoiceMale {
		speaker = p.maleVoice
	}
	return p.client.Synthesize(ctx, text, speaker)
}

// ProvidersFromConfig builds the cascade in the configured priority order.
func ProvidersFromConfig(cfg *config.Config) ([]Provider, error) {
	providers := make([]Provider, 0, len(cfg.TTS.Order))
	for _, name := range cfg.TTS.Order {
		switch name {
		case "elevenlabs":
			el := cfg.TTS.ElevenLabs
			client := elevenlabs.NewClient(el.APIKey,
				elevenlabs.WithBaseURL(el.BaseURL),
				elevenlabs.WithTimeout(time.Duration(el.TimeoutSeconds)*time.Second),
			)
			providers = append(providers, NewElevenLabsProvider(client, el.MaleVoiceID, el.FemaleVoiceID))
		case "google":
			g := cfg.TTS.Google
			client := googletts.NewClient(
				googletts.WithBaseURL(g.BaseURL),
				googletts.WithTimeout(time.Duration(g.TimeoutSeconds)*time.Second),
			)
			providers = append(providers, NewGoogleProvider(client))
		case "yandex":
			ya := cfg.TTS.Yandex
			client := yandex.NewClient(ya.APIKey,
				yandex.WithBaseURL(ya.BaseURL),
				yandex.WithTimeout(time.Duration(ya.TimeoutSeconds)*time.Second),
			)
			providers = append(providers, NewYandexProvider(client, ya.MaleVoice, ya.FemaleVoice))
		default:
			return nil, fmt.Errorf("unknown tts provider %q", name)
		}
	}
	return providers, nil
}
