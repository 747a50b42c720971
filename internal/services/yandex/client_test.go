package yandex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSynthesizeSendsFormAndAuth(t *testing.T) {
	var gotAuth, gotVoice, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotAuth = r.Header.Get("Authorization")
		gotVoice = r.PostFormValue("voice")
		gotFormat = r.PostFormValue("format")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := NewClient("ya-key", WithBaseURL(server.URL))
	audio, err := client.Synthesize(context.Background(), "Hello world", "alena")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("unexpected audio payload: %q", audio)
	}
	if gotAuth != "Api-Key ya-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotVoice != "alena" || gotFormat != "mp3" {
		t.Fatalf("unexpected form values: voice=%q format=%q", gotVoice, gotFormat)
	}
}

func TestSynthesizeRequiresKey(t *testing.T) {
	client := NewClient("")
	if _, err := client.Synthesize(context.Background(), "text", "alena"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestSynthesizeNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("ya-key", WithBaseURL(server.URL))
	if _, err := client.Synthesize(context.Background(), "text", "filipp"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
