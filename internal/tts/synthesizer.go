package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"clipforge/internal/logging"
)

// Provider is one backing speech service in the cascade.
type Provider interface {
	Name() string
	// TryGenerate returns MP3 audio bytes for text spoken in the given voice,
	// or an error when the service is unavailable or rejects the request.
	TryGenerate(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Synthesizer runs an ordered provider cascade. It never fails outward on
// provider errors: when every provider is exhausted it writes a zero-byte
// placeholder so callers can uniformly attempt the narrated path and then
// degrade on the Usable check.
type Synthesizer struct {
	providers  []Provider
	uploadsDir string
	logger     *slog.Logger
}

// NewSynthesizer builds a cascade over providers in priority order.
func NewSynthesizer(uploadsDir string, logger *slog.Logger, providers ...Provider) *Synthesizer {
	return &Synthesizer{
		providers:  providers,
		uploadsDir: uploadsDir,
		logger:     logging.NewComponentLogger(logger, "tts"),
	}
}

// Synthesize walks the cascade in order and writes the first successful
// response to the uploads directory. The returned error is non-nil only for
// local filesystem failures; provider failures degrade to the placeholder.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice Voice) (Artifact, error) {
	text = strings.TrimSpace(text)

	for _, provider := range s.providers {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		audio, err := provider.TryGenerate(ctx, text, voice)
		if err != nil {
			s.logger.Warn("provider failed, trying next",
				logging.String("provider", provider.Name()),
				logging.Error(err),
			)
			continue
		}
		path := filepath.Join(s.uploadsDir, fmt.Sprintf("audio_%s_%s.mp3", provider.Name(), uuid.New().String()))
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return Artifact{}, fmt.Errorf("write narration audio: %w", err)
		}
		s.logger.Info("narration synthesized",
			logging.String("provider", provider.Name()),
			logging.Int("bytes", len(audio)),
		)
		return Artifact{Path: path, Provider: provider.Name()}, nil
	}

	s.logger.Warn("all narration providers failed, writing placeholder")
	path := filepath.Join(s.uploadsDir, fmt.Sprintf("audio_empty_%s.mp3", uuid.New().String()))
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write placeholder audio: %w", err)
	}
	return Artifact{Path: path, Provider: ProviderNone}, nil
}
