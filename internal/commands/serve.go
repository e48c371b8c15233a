package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lnmiit/askwidget/internal/assistant"
	"github.com/lnmiit/askwidget/internal/config"
	"github.com/lnmiit/askwidget/internal/logging"
	"github.com/lnmiit/askwidget/internal/server"
)

type serveOptions struct {
	addr    string
	origin  string
	backend string
}

func newServeCmd(deps *Dependencies) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development assistant service",
		Long: `Run a local assistant service. It accepts POST /chat with {"query": ...}
and exposes GET /health, so the widget can be tried without a real backend.

Backends:
  echo     answer every question with "You said: <question>" (default)
  gemini   answer with a Gemini model; needs GEMINI_API_KEY`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg, opts)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config, 127.0.0.1:8000)")
	cmd.Flags().StringVar(&opts.origin, "origin", "", "Allowed CORS origin (default from config, *)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Reply backend: echo or gemini (default from config, echo)")
	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config, opts *serveOptions) {
	if cmd.Flags().Changed("addr") {
		cfg.ServeAddr = opts.addr
	}
	if cmd.Flags().Changed("origin") {
		cfg.AllowedOrigin = opts.origin
	}
	if cmd.Flags().Changed("backend") {
		cfg.ServeBackend = opts.backend
	}
}

// replyFor returns the answer function for the configured backend.
func replyFor(ctx context.Context, cfg config.Config, logger zerolog.Logger) (server.ReplyFunc, error) {
	switch cfg.ServeBackend {
	case "", config.BackendEcho:
		return server.EchoReply, nil
	case config.BackendGemini:
		gemini, err := assistant.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini backend: %w (set %s)", err, config.EnvGeminiAPIKey)
		}
		logger.Info().Str("model", gemini.Model()).Msg("answering with gemini")
		return gemini.Reply, nil
	default:
		return nil, fmt.Errorf("unknown backend %q: use %s or %s", cfg.ServeBackend, config.BackendEcho, config.BackendGemini)
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.InitConsole(cfg)

	reply, err := replyFor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return server.NewServer(cfg, logger, server.WithReply(reply)).ListenAndServe(ctx)
}
