package scanner

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Server exposes the scan trigger over HTTP.
type Server struct {
	scanner *Scanner
	logger  zerolog.Logger
	mux     *http.ServeMux
}

// NewServer creates the HTTP server around a Scanner.
func NewServer(scanner *Scanner, logger zerolog.Logger) *Server {
	s := &Server{
		scanner: scanner,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	// The trigger is method-agnostic: timers and manual curl both work.
	s.mux.HandleFunc("/scan", s.handleScan)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Str("remote", r.RemoteAddr).Msg("scan triggered")

	report, err := s.scanner.Run(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("scan failed")
		http.Error(w, fmt.Sprintf("scan failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, report.Summary())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
