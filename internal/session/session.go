// Package session tracks per-user conversation state for the staged
// image/text/voice intake that precedes a generation job.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"clipforge/internal/tts"
)

// State is one step of the intake conversation.
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingImage State = "awaiting_image"
	StateAwaitingText  State = "awaiting_text"
	StateChoosingVoice State = "choosing_voice"
)

// MaxImages caps how many images one job may carry.
const MaxImages = 10

// maxTextRunes mirrors the pipeline's narration text cap.
const maxTextRunes = 200

var (
	// ErrWrongState reports an operation that the current state does not allow.
	ErrWrongState = errors.New("session: operation not allowed in current state")
	// ErrTooManyImages reports an attempt to exceed the per-job image cap.
	ErrTooManyImages = errors.New("session: image limit reached")
	// ErrTextInvalid reports empty or over-limit narration text.
	ErrTextInvalid = errors.New("session: narration text empty or too long")
)

// Session is one user's intake in progress. The voice preference survives
// resets; everything else is per-job.
type Session struct {
	UserID    string
	State     State
	Images    []string
	Text      string
	Voice     tts.Voice
	UpdatedAt time.Time
}

// Begin starts a new intake, discarding any partial job but keeping the
// voice preference. It returns the image paths the discarded job held so the
// caller can clean them up.
func (s *Session) Begin() []string {
	discarded := s.Images
	s.State = StateAwaitingImage
	s.Images = nil
	s.Text = ""
	s.touch()
	return discarded
}

// AddImage records an uploaded image. More images may arrive until the text
// does. Returns the image count so far.
func (s *Session) AddImage(path string) (int, error) {
	switch s.State {
	case StateAwaitingImage, StateAwaitingText:
	default:
		return 0, fmt.Errorf("%w: add image in %s", ErrWrongState, s.State)
	}
	if len(s.Images) >= MaxImages {
		return 0, ErrTooManyImages
	}
	s.Images = append(s.Images, path)
	s.State = StateAwaitingText
	s.touch()
	return len(s.Images), nil
}

// SetText records the narration text and advances to voice selection. At
// least one image must already be present.
func (s *Session) SetText(text string) error {
	if s.State != StateAwaitingText {
		return fmt.Errorf("%w: set text in %s", ErrWrongState, s.State)
	}
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxTextRunes {
		return ErrTextInvalid
	}
	s.Text = text
	s.State = StateChoosingVoice
	s.touch()
	return nil
}

// ChooseVoice records the voice and marks the session ready for generation.
func (s *Session) ChooseVoice(voice tts.Voice) error {
	if s.State != StateChoosingVoice {
		return fmt.Errorf("%w: choose voice in %s", ErrWrongState, s.State)
	}
	s.Voice = voice
	s.touch()
	return nil
}

// Ready reports whether the session holds a complete job.
func (s *Session) Ready() bool {
	return s.State == StateChoosingVoice && s.Text != "" && len(s.Images) > 0
}

// Reset clears the job and returns to idle, preserving the voice preference.
// It returns the image paths the job held so the caller can clean them up.
func (s *Session) Reset() []string {
	discarded := s.Images
	s.State = StateIdle
	s.Images = nil
	s.Text = ""
	s.touch()
	return discarded
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
