// Package commands provides CLI commands for askwidget.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lnmiit/askwidget/internal/config"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	endpoint string
	timeout  int
}

// NewRootCmd builds the command tree on top of deps.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	globals := &globalOptions{}
	query := &queryOptions{}

	rootCmd := &cobra.Command{
		Use:   "askwidget [question]",
		Short: "Campus assistant chat widget for the terminal",
		Long: `askwidget is a terminal front-end for a campus assistant service.
It shows a landing page with a chat widget that forwards each question to
the configured endpoint as {"query": ...} and displays the reply.

Examples:
  askwidget                             Open the landing page
  askwidget chat --open                 Open straight into the chat widget
  askwidget "Where is the library?"     Ask a single question
  askwidget -f question.md              Read the question from a file
  echo "Hostel timings?" | askwidget    Read the question from stdin
  askwidget serve                       Run the development assistant service
  askwidget config                      Configure settings`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "askwidget %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if query.file != "" {
				data, err := os.ReadFile(query.file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQueryCmd(cmd, deps, globals, query, string(data))
			}

			if deps.HasStdin != nil && deps.HasStdin() {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return runQueryCmd(cmd, deps, globals, query, string(data))
			}

			if len(args) > 0 {
				return runQueryCmd(cmd, deps, globals, query, args[0])
			}

			// No input: open the landing page
			return runChat(cmd, deps, globals, false)
		},
	}

	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.PersistentFlags().StringVar(&globals.endpoint, "endpoint", "", "Assistant endpoint URL (default from config)")
	rootCmd.PersistentFlags().IntVar(&globals.timeout, "timeout", 0, "Request timeout in seconds, 0 disables")
	rootCmd.Flags().StringVarP(&query.output, "output", "o", "", "Save reply to file")
	rootCmd.Flags().StringVarP(&query.file, "file", "f", "", "Read question from file")
	rootCmd.Flags().BoolVar(&query.raw, "raw", false, "Print the reply as plain text")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(newChatCmd(deps, globals))
	rootCmd.AddCommand(NewConfigCmd(deps))
	rootCmd.AddCommand(newServeCmd(deps))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(NewDependencies()).Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads the configuration and applies the global flags on top.
func resolveConfig(cmd *cobra.Command, deps *Dependencies, globals *globalOptions) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("endpoint") {
		cfg.EndpointURL = globals.endpoint
	}
	if cmd.Flags().Changed("timeout") {
		if globals.timeout < 0 {
			return cfg, fmt.Errorf("invalid --timeout %d: must be zero or positive", globals.timeout)
		}
		cfg.RequestTimeout = globals.timeout
	}

	if err := config.ValidateEndpoint(cfg.EndpointURL); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// initLogger sets up file logging. A failure only costs the log file.
func initLogger(deps *Dependencies, cfg config.Config) zerolog.Logger {
	if deps.InitLogger == nil {
		return zerolog.Nop()
	}
	logger, err := deps.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: logging disabled: %v\n", err)
	}
	return logger
}
