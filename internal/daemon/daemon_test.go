package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"clipforge/internal/encoding"
	"clipforge/internal/logging"
	"clipforge/internal/session"
	"clipforge/internal/testsupport"
)

// testDaemon builds a daemon with temp dirs, a fake TTS endpoint, and a
// stubbed encode runner. The returned handler is exercised directly.
func testDaemon(t *testing.T, ttsOK bool) (*Daemon, http.Handler) {
	t.Helper()

	ttsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ttsOK {
			http.Error(w, "synth down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("mp3 audio bytes"))
	}))
	t.Cleanup(ttsSrv.Close)

	cfg := testsupport.NewConfig(t)
	cfg.TTS.Order = []string{"google"}
	cfg.TTS.Google.BaseURL = ttsSrv.URL

	restore := encoding.SetRunnerForTests(func(ctx context.Context, binary string, args []string) ([]byte, error) {
		if len(args) == 1 && args[0] == "-version" {
			return []byte("ffmpeg version 7.0"), nil
		}
		return nil, os.WriteFile(args[len(args)-1], bytes.Repeat([]byte("v"), 4096), 0o644)
	})
	t.Cleanup(restore)

	d, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.janitor.Stop)
	return d, d.api.handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func uploadImage(t *testing.T, h http.Handler, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("jpeg bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+userID+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestFullIntakeAndGeneration(t *testing.T) {
	_, h := testDaemon(t, true)

	if rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/begin", ""); rec.Code != http.StatusOK {
		t.Fatalf("begin: %d %s", rec.Code, rec.Body.String())
	}
	if rec := uploadImage(t, h, "u1"); rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/text", `{"text":"A clip about nothing."}`); rec.Code != http.StatusOK {
		t.Fatalf("text: %d %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/voice", `{"voice":"female"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("voice: %d %s", rec.Code, rec.Body.String())
	}
	var gen generateResponse
	decodeJSON(t, rec, &gen)
	if gen.Mode != "narrated" || gen.Degraded || gen.Provider != "google" {
		t.Fatalf("unexpected generation response: %+v", gen)
	}
	if !strings.HasPrefix(gen.Video, "video_") || !strings.HasSuffix(gen.Video, ".mp4") {
		t.Fatalf("unexpected video name: %q", gen.Video)
	}

	// The clip is downloadable while retention holds.
	dl := doJSON(t, h, http.MethodGet, "/api/videos/"+gen.Video, "")
	if dl.Code != http.StatusOK {
		t.Fatalf("download: %d %s", dl.Code, dl.Body.String())
	}
	if ct := dl.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Fatalf("unexpected content type %q", ct)
	}

	// Session returned to idle after generation.
	var snap sessionPayload
	decodeJSON(t, doJSON(t, h, http.MethodGet, "/api/sessions/u1/", ""), &snap)
	if snap.State != "idle" || snap.Images != 0 {
		t.Fatalf("session not reset: %+v", snap)
	}
}

func TestGenerationDegradesWhenSynthesisFails(t *testing.T) {
	_, h := testDaemon(t, false)

	doJSON(t, h, http.MethodPost, "/api/sessions/u1/begin", "")
	uploadImage(t, h, "u1")
	doJSON(t, h, http.MethodPost, "/api/sessions/u1/text", `{"text":"Silent clip."}`)

	rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/voice", `{"voice":"male"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("voice: %d %s", rec.Code, rec.Body.String())
	}
	var gen generateResponse
	decodeJSON(t, rec, &gen)
	if gen.Mode != "silent" || !gen.Degraded {
		t.Fatalf("expected degraded silent clip, got %+v", gen)
	}
}

func TestIntakeStateGuards(t *testing.T) {
	_, h := testDaemon(t, true)

	// Text before any image.
	doJSON(t, h, http.MethodPost, "/api/sessions/u1/begin", "")
	if rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/text", `{"text":"too early"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for early text, got %d", rec.Code)
	}

	// Voice before text.
	uploadImage(t, h, "u1")
	if rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/voice", `{"voice":"male"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for early voice, got %d", rec.Code)
	}

	// Over-limit text.
	long := strings.Repeat("a", 201)
	if rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/text", `{"text":"`+long+`"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for long text, got %d", rec.Code)
	}

	// Unknown voice.
	doJSON(t, h, http.MethodPost, "/api/sessions/u1/text", `{"text":"fine"}`)
	if rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/voice", `{"voice":"robot"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown voice, got %d", rec.Code)
	}
}

func TestVideoDownloadRejectsForeignNames(t *testing.T) {
	_, h := testDaemon(t, true)

	for _, name := range []string{"config.toml", "video_..%2F..%2Fetc", "notvideo.mp4"} {
		rec := doJSON(t, h, http.MethodGet, "/api/videos/"+name, "")
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusNotFound {
			t.Fatalf("name %q: expected rejection, got %d", name, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/api/videos/video_missing.mp4", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing clip should 404, got %d", rec.Code)
	}
}

func TestResetDiscardsUploadedImages(t *testing.T) {
	d, h := testDaemon(t, true)

	doJSON(t, h, http.MethodPost, "/api/sessions/u1/begin", "")
	uploadImage(t, h, "u1")

	entries, _ := os.ReadDir(d.cfg.Paths.UploadsDir)
	if len(entries) != 1 {
		t.Fatalf("expected one stored upload, got %d", len(entries))
	}

	if rec := doJSON(t, h, http.MethodPost, "/api/sessions/u1/reset", ""); rec.Code != http.StatusOK {
		t.Fatalf("reset: %d", rec.Code)
	}
	entries, _ = os.ReadDir(d.cfg.Paths.UploadsDir)
	if len(entries) != 0 {
		t.Fatalf("reset should discard uploads, %d left", len(entries))
	}
}

func TestStatusReportsFFmpeg(t *testing.T) {
	_, h := testDaemon(t, true)

	rec := doJSON(t, h, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	var status Status
	decodeJSON(t, rec, &status)
	if !status.FFmpegAvailable {
		t.Fatal("stubbed runner should report ffmpeg available")
	}
}

func TestSingleInstanceLock(t *testing.T) {
	d1, _ := testDaemon(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d1.Start(ctx); err != nil {
		t.Fatalf("first start: %v", err)
	}
	defer d1.Stop()

	d2, err := New(d1.cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d2.Start(ctx); err == nil {
		d2.Stop()
		t.Fatal("second instance must fail to acquire the lock")
	}
}

func TestStaleSessionSweep(t *testing.T) {
	d, h := testDaemon(t, true)

	doJSON(t, h, http.MethodPost, "/api/sessions/u1/begin", "")
	uploadImage(t, h, "u1")

	// Age the session past the stale threshold, then sweep.
	d.sessions.Do("u1", func(s *session.Session) error {
		s.UpdatedAt = time.Now().Add(-2 * time.Hour)
		return nil
	})
	d.sweepSessions()

	snap := d.sessions.Get("u1")
	if snap.State != session.StateIdle || len(snap.Images) != 0 {
		t.Fatalf("stale session not reset: %+v", snap)
	}
	entries, _ := os.ReadDir(d.cfg.Paths.UploadsDir)
	if len(entries) != 0 {
		t.Fatalf("stale uploads should be removed, %d left", len(entries))
	}
}
