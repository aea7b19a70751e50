package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/admitscan/internal/discover"
)

// ErrInvalidRequest marks request bodies rejected at the boundary.
var ErrInvalidRequest = errors.New("invalid request")

const (
	defaultMaxResults = 5
	maxMaxResults     = 10
	maxBodyBytes      = 64 << 10
)

// Discoverer runs one lookup. *app.App and *discover.Pipeline satisfy it.
type Discoverer interface {
	Discover(ctx context.Context, req discover.Request) (discover.Result, error)
}

// ScrapeRequest is the JSON body of POST /scrape.
type ScrapeRequest struct {
	University string `json:"university"`
	Program    string `json:"program"`
	Domain     string `json:"domain,omitempty"`
	Year       *int   `json:"year,omitempty"`
	MaxResults *int   `json:"max_results,omitempty"`
}

// Validate checks the request and converts it to a discovery request.
func (r ScrapeRequest) Validate() (discover.Request, error) {
	out := discover.Request{
		University: strings.TrimSpace(r.University),
		Program:    strings.TrimSpace(r.Program),
		Domain:     strings.TrimSpace(r.Domain),
		MaxResults: defaultMaxResults,
	}
	if out.University == "" {
		return out, fmt.Errorf("%w: university is required", ErrInvalidRequest)
	}
	if out.Program == "" {
		return out, fmt.Errorf("%w: program is required", ErrInvalidRequest)
	}
	if r.MaxResults != nil {
		if *r.MaxResults < 1 || *r.MaxResults > maxMaxResults {
			return out, fmt.Errorf("%w: max_results must be between 1 and %d", ErrInvalidRequest, maxMaxResults)
		}
		out.MaxResults = *r.MaxResults
	}
	if r.Year != nil {
		out.Year = *r.Year
	}
	return out, nil
}

// Server exposes discovery over HTTP.
type Server struct {
	Discoverer Discoverer
	// Timeout bounds one discovery run. Zero means no bound beyond the
	// client's connection.
	Timeout time.Duration
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scrape", s.handleScrape)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var body ScrapeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}
	req, err := body.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log.Info().Str("university", req.University).Str("program", req.Program).Int("max_results", req.MaxResults).Msg("scrape request")

	ctx := r.Context()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	res, err := s.Discoverer.Discover(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("university", req.University).Str("program", req.Program).Msg("discovery failed")
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
