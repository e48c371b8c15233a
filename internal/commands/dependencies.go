package commands

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/lnmiit/askwidget/internal/api"
	"github.com/lnmiit/askwidget/internal/config"
	"github.com/lnmiit/askwidget/internal/logging"
	"github.com/lnmiit/askwidget/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(client api.AssistantClient, cfg config.Config, logger zerolog.Logger, startOpen bool) error
	RunConfig() error
}

// ClientFactory builds the assistant client for the effective configuration.
type ClientFactory func(cfg config.Config, logger zerolog.Logger) (api.AssistantClient, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	NewClient  ClientFactory
	TUI        TUIInterface
	LoadConfig func() (config.Config, error)
	InitLogger func(cfg config.Config) (zerolog.Logger, error)
	Clipboard  func(text string) error

	Stdin    io.Reader
	HasStdin func() bool
	Stdout   io.Writer
	Stderr   io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(client api.AssistantClient, cfg config.Config, logger zerolog.Logger, startOpen bool) error {
	return tui.RunChat(client, cfg, logger, startOpen)
}

func (d *DefaultTUI) RunConfig() error {
	return tui.RunConfig()
}

// newAssistantClient is the production ClientFactory.
func newAssistantClient(cfg config.Config, logger zerolog.Logger) (api.AssistantClient, error) {
	return api.NewClient(cfg.EndpointURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
}

// stdinIsPipe reports whether something is piped into the process.
func stdinIsPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:  newAssistantClient,
		TUI:        &DefaultTUI{},
		LoadConfig: config.Load,
		InitLogger: logging.Init,
		Clipboard:  clipboard.WriteAll,
		Stdin:      os.Stdin,
		HasStdin:   stdinIsPipe,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}
