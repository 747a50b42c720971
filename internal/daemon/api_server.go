package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"clipforge/internal/assembly"
	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/services"
	"clipforge/internal/session"
	"clipforge/internal/tts"
)

const maxUploadBytes = 10 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api"),
		daemon: d,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/status", srv.handleStatus)
	r.Route("/api/sessions/{userID}", func(r chi.Router) {
		r.Get("/", srv.handleGetSession)
		r.Post("/begin", srv.handleBegin)
		r.Post("/images", srv.handleUploadImage)
		r.Post("/text", srv.handleSetText)
		r.Post("/voice", srv.handleChooseVoice)
		r.Post("/reset", srv.handleReset)
	})
	r.Get("/api/videos/{name}", srv.handleDownloadVideo)

	srv.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// handler returns the HTTP handler, for tests.
func (s *apiServer) handler() http.Handler { return s.server.Handler }

type sessionPayload struct {
	UserID string `json:"user_id"`
	State  string `json:"state"`
	Images int    `json:"images"`
	Text   string `json:"text,omitempty"`
	Voice  string `json:"voice,omitempty"`
}

func sessionToPayload(snap session.Session) sessionPayload {
	return sessionPayload{
		UserID: snap.UserID,
		State:  string(snap.State),
		Images: len(snap.Images),
		Text:   snap.Text,
		Voice:  string(snap.Voice),
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.writeJSON(w, http.StatusOK, sessionToPayload(s.daemon.sessions.Get(userID)))
}

func (s *apiServer) handleBegin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	err := s.daemon.sessions.Do(userID, func(sess *session.Session) error {
		for _, image := range sess.Begin() {
			s.daemon.janitor.RemoveNow(image)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sessionToPayload(s.daemon.sessions.Get(userID)))
}

func (s *apiServer) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart field 'image' required")
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	var count int
	err = s.daemon.sessions.Do(userID, func(sess *session.Session) error {
		count, err = sess.AddImage(path)
		return err
	})
	if err != nil {
		s.daemon.janitor.RemoveNow(path)
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"images": count})
}

func (s *apiServer) saveUpload(file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = ".jpg"
	}
	path := filepath.Join(s.daemon.cfg.Paths.UploadsDir, fmt.Sprintf("image_%s%s", uuid.NewString(), ext))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *apiServer) handleSetText(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	err := s.daemon.sessions.Do(userID, func(sess *session.Session) error {
		return sess.SetText(payload.Text)
	})
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionToPayload(s.daemon.sessions.Get(userID)))
}

type generateResponse struct {
	Video    string `json:"video"`
	Bytes    int64  `json:"bytes"`
	Mode     string `json:"mode"`
	Provider string `json:"provider,omitempty"`
	Degraded bool   `json:"degraded"`
}

// handleChooseVoice records the voice and immediately runs generation, all
// under the per-user lock. A second request for the same user waits.
func (s *apiServer) handleChooseVoice(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var payload struct {
		Voice string `json:"voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	voice, err := tts.ParseVoice(payload.Voice)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result assembly.Result
	err = s.daemon.sessions.Do(userID, func(sess *session.Session) error {
		if err := sess.ChooseVoice(voice); err != nil {
			return err
		}
		res, genErr := s.daemon.pipeline.Generate(r.Context(), assembly.Request{
			Text:   sess.Text,
			Images: sess.Images,
			Voice:  sess.Voice,
		})
		// Uploaded images are consumed by the job either way.
		for _, image := range sess.Reset() {
			s.daemon.janitor.RemoveNow(image)
		}
		if genErr != nil {
			return genErr
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrWrongState) {
			s.writeSessionError(w, err)
			return
		}
		if errors.Is(err, services.ErrValidation) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("generation failed", logging.String("user", userID), logging.Error(err))
		s.writeError(w, http.StatusBadGateway, "clip generation failed")
		return
	}

	s.writeJSON(w, http.StatusOK, generateResponse{
		Video:    filepath.Base(result.VideoPath),
		Bytes:    result.SizeBytes,
		Mode:     string(result.Mode),
		Provider: result.Provider,
		Degraded: result.Degraded,
	})
}

func (s *apiServer) handleReset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	err := s.daemon.sessions.Do(userID, func(sess *session.Session) error {
		for _, image := range sess.Reset() {
			s.daemon.janitor.RemoveNow(image)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sessionToPayload(s.daemon.sessions.Get(userID)))
}

// handleDownloadVideo serves a finished clip. Only pipeline-named files in
// the output directory are reachable; retention may already have removed it.
func (s *apiServer) handleDownloadVideo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !strings.HasPrefix(name, "video_") || name != filepath.Base(name) || strings.Contains(name, "..") {
		s.writeError(w, http.StatusBadRequest, "invalid video name")
		return
	}
	path := filepath.Join(s.daemon.cfg.Paths.OutputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.writeError(w, http.StatusNotFound, "video not found or expired")
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	http.ServeFile(w, r, path)
}

func (s *apiServer) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrWrongState):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrTooManyImages), errors.Is(err, session.ErrTextInvalid):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
