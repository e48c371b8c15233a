package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChatCmd(deps *Dependencies, globals *globalOptions) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the landing page with the chat widget",
		Long: `Open the landing page with the chat widget mounted on it.

Press Enter on the launcher to open the widget and Esc to close it again.
Each question is sent to the configured endpoint; the reply is appended to
the transcript when it arrives.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, globals, open)
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Start with the widget open")
	return cmd
}

func runChat(cmd *cobra.Command, deps *Dependencies, globals *globalOptions, startOpen bool) error {
	cfg, err := resolveConfig(cmd, deps, globals)
	if err != nil {
		return err
	}
	logger := initLogger(deps, cfg)

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	logger.Info().
		Str("endpoint", client.Endpoint()).
		Dur("timeout", cfg.Timeout()).
		Msg("starting chat")

	return deps.TUI.RunChat(client, cfg, logger, startOpen)
}
