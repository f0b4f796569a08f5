// Package server exposes the pipeline over a JSON HTTP API for the browser
// frontend. One endpoint does the work; health and status mirror the run
// monitor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/MrModa2442/YouTube-comment-check/finder"
	"github.com/MrModa2442/YouTube-comment-check/finder/youtube"
	"github.com/MrModa2442/YouTube-comment-check/shared/ai"
	"github.com/MrModa2442/YouTube-comment-check/shared/config"
	"github.com/MrModa2442/YouTube-comment-check/shared/monitoring"
)

type Server struct {
	config *config.Config
	finder *finder.Finder
}

func New(cfg *config.Config, f *finder.Finder) *Server {
	return &Server{
		config: cfg,
		finder: f,
	}
}

// Handler builds the route table. Exposed separately so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	health := monitoring.NewHealthServer(s.finder.Monitor(), "")

	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.analyzeHandler)
	mux.HandleFunc("/health", health.HealthHandler)
	mux.HandleFunc("/status", health.StatusHandler)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Server.Port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Comment check server listening on :%d", s.config.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		return
	}

	videoURL := r.URL.Query().Get("url")
	if videoURL == "" && r.Method == http.MethodPost {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		videoURL = req.URL
	}
	if videoURL == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	report, err := s.finder.FetchAndAnalyze(r.Context(), videoURL)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, report)
}

// statusFor maps the pipeline's error taxonomy onto HTTP statuses so the
// frontend can tell input, configuration and upstream problems apart.
func statusFor(err error) int {
	switch {
	case errors.Is(err, finder.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, finder.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, youtube.ErrAPIKeyMissing), errors.Is(err, ai.ErrAPIKeyMissing):
		return http.StatusInternalServerError
	case errors.Is(err, ai.ErrInvalidAPIKey), errors.Is(err, ai.ErrBadResponseFormat):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
