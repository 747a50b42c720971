package tts

import (
	"context"
	"errors"
	"os"
	"testing"

	"clipforge/internal/logging"
)

type fakeProvider struct {
	name  string
	audio []byte
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) TryGenerate(ctx context.Context, text string, voice Voice) ([]byte, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.audio, nil
}

func TestSynthesizeFirstSuccessShortCircuits(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("down")}
	second := &fakeProvider{name: "second", audio: []byte("audio")}
	third := &fakeProvider{name: "third", audio: []byte("unused")}

	synth := NewSynthesizer(t.TempDir(), logging.NewNop(), first, second, third)
	artifact, err := synth.Synthesize(context.Background(), "Hello world", VoiceFemale)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if artifact.Provider != "second" {
		t.Fatalf("expected artifact from second provider, got %q", artifact.Provider)
	}
	if third.calls != 0 {
		t.Fatalf("expected third provider never invoked, got %d calls", third.calls)
	}
	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "audio" {
		t.Fatalf("unexpected artifact content: %q", data)
	}
	if !artifact.Usable() {
		t.Fatal("expected artifact to be usable")
	}
}

func TestSynthesizeAllFailWritesPlaceholder(t *testing.T) {
	failing := errors.New("unavailable")
	providers := []Provider{
		&fakeProvider{name: "a", err: failing},
		&fakeProvider{name: "b", err: failing},
		&fakeProvider{name: "c", err: failing},
	}

	synth := NewSynthesizer(t.TempDir(), logging.NewNop(), providers...)
	artifact, err := synth.Synthesize(context.Background(), "Hello", VoiceMale)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if artifact.Provider != ProviderNone {
		t.Fatalf("expected placeholder provider tag, got %q", artifact.Provider)
	}
	info, err := os.Stat(artifact.Path)
	if err != nil {
		t.Fatalf("expected placeholder file: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected zero-byte placeholder, got %d bytes", info.Size())
	}
	if artifact.Usable() {
		t.Fatal("expected placeholder to be unusable")
	}
}

func TestSynthesizeHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &fakeProvider{name: "a", audio: []byte("audio")}
	synth := NewSynthesizer(t.TempDir(), logging.NewNop(), provider)
	if _, err := synth.Synthesize(ctx, "Hello", VoiceFemale); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("expected no provider calls after cancel, got %d", provider.calls)
	}
}

func TestVoiceMappingPerProvider(t *testing.T) {
	el := NewElevenLabsProvider(nil, "adam-id", "bella-id")
	if el.maleVoiceID != "adam-id" || el.femaleVoiceID != "bella-id" {
		t.Fatal("unexpected elevenlabs voice mapping")
	}
	ya := NewYandexProvider(nil, "filipp", "alena")
	if ya.maleVoice != "filipp" || ya.femaleVoice != "alena" {
		t.Fatal("unexpected yandex voice mapping")
	}
}

func TestParseVoice(t *testing.T) {
	if v, err := ParseVoice("Male"); err != nil || v != VoiceMale {
		t.Fatalf("unexpected result: %v %v", v, err)
	}
	if v, err := ParseVoice(""); err != nil || v != VoiceFemale {
		t.Fatalf("expected female default, got %v %v", v, err)
	}
	if _, err := ParseVoice("robot"); err == nil {
		t.Fatal("expected error for unknown voice")
	}
}
