// Package server implements a development assistant service that speaks the
// same wire contract as the real one: POST {"query": ...} and receive
// {"response": ...}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/lnmiit/askwidget/internal/config"
	"github.com/lnmiit/askwidget/internal/models"
)

// maxBodyBytes bounds a chat request body.
const maxBodyBytes = 64 << 10

// ReplyFunc produces the answer for a query.
type ReplyFunc func(ctx context.Context, query string) (string, error)

// EchoReply answers every query by quoting it back.
func EchoReply(_ context.Context, query string) (string, error) {
	return "You said: " + query, nil
}

// Server is the development assistant service. It answers POST /chat through
// its ReplyFunc, EchoReply unless WithReply says otherwise.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger zerolog.Logger
	reply  ReplyFunc
}

// Option customizes a Server.
type Option func(*Server)

// WithReply replaces the echo responder.
func WithReply(fn ReplyFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.reply = fn
		}
	}
}

// NewServer builds the router with request IDs, panic recovery, request
// logging and CORS for cfg.AllowedOrigin.
func NewServer(cfg config.Config, logger zerolog.Logger, opts ...Option) *Server {
	r := chi.NewRouter()

	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	s := &Server{
		router: r,
		cfg:    cfg,
		logger: logger,
		reply:  EchoReply,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Post("/chat", s.handleChat)
}

// Router exposes the handler, mainly for httptest.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe serves on cfg.ServeAddr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServeAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("assistant service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down assistant service")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	reply, err := s.reply(r.Context(), query)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("reply failed")
		s.writeError(w, http.StatusInternalServerError, "could not produce a reply")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.ChatResponse{Response: reply})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}

// requestLogger logs one line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
