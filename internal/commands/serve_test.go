package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lnmiit/askwidget/internal/config"
)

func TestApplyServeFlags(t *testing.T) {
	cmd := newServeCmd(newTestEnv(t).deps)
	if err := cmd.ParseFlags([]string{"--addr", "0.0.0.0:9000"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	opts := &serveOptions{addr: "0.0.0.0:9000"}
	applyServeFlags(cmd, &cfg, opts)

	if cfg.ServeAddr != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.ServeAddr)
	}
	if cfg.AllowedOrigin != "*" {
		t.Errorf("origin should keep its default, got %q", cfg.AllowedOrigin)
	}
}

func TestApplyServeFlags_Backend(t *testing.T) {
	cmd := newServeCmd(newTestEnv(t).deps)
	if err := cmd.ParseFlags([]string{"--backend", "gemini"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	applyServeFlags(cmd, &cfg, &serveOptions{backend: "gemini"})

	if cfg.ServeBackend != config.BackendGemini {
		t.Errorf("backend = %q", cfg.ServeBackend)
	}
	if cfg.ServeAddr != "127.0.0.1:8000" {
		t.Errorf("addr should keep its default, got %q", cfg.ServeAddr)
	}
}

func TestReplyFor_Echo(t *testing.T) {
	for _, backend := range []string{"", config.BackendEcho} {
		cfg := config.DefaultConfig()
		cfg.ServeBackend = backend

		reply, err := replyFor(context.Background(), cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("backend %q: %v", backend, err)
		}
		got, err := reply(context.Background(), "hello")
		if err != nil || got != "You said: hello" {
			t.Errorf("backend %q: reply = %q, %v", backend, got, err)
		}
	}
}

func TestReplyFor_GeminiNeedsKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ServeBackend = config.BackendGemini
	cfg.GeminiAPIKey = ""

	_, err := replyFor(context.Background(), cfg, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), config.EnvGeminiAPIKey) {
		t.Errorf("err = %v, want a hint naming %s", err, config.EnvGeminiAPIKey)
	}
}

func TestReplyFor_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ServeBackend = "faiss"

	if _, err := replyFor(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown backend")
	}
}
