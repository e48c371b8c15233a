package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lnmiit/askwidget/internal/config"
	apierrors "github.com/lnmiit/askwidget/internal/errors"
	"github.com/lnmiit/askwidget/internal/render"
	"github.com/lnmiit/askwidget/internal/widget"
)

// queryOptions holds the one-shot flags of the root command.
type queryOptions struct {
	output string
	file   string
	raw    bool
}

// palette holds the one-shot output colors, taken from the active TUI theme
// so the printed reply matches the widget.
type palette struct {
	primary  lipgloss.Color
	text     lipgloss.Color
	textDim  lipgloss.Color
	textMute lipgloss.Color
	success  lipgloss.Color
	warning  lipgloss.Color
	err      lipgloss.Color
	gradient []lipgloss.Color
}

func currentPalette() palette {
	theme := render.GetTUITheme()
	return palette{
		primary:  theme.Primary,
		text:     theme.Text,
		textDim:  theme.TextDim,
		textMute: theme.TextMute,
		success:  theme.Secondary,
		warning:  theme.Warning,
		err:      theme.Error,
		gradient: []lipgloss.Color{
			theme.Primary,
			theme.Accent,
			theme.Secondary,
			theme.Accent,
		},
	}
}

func (p palette) botLabel() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(p.primary).
		Bold(true)
}

func (p palette) botBubble() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.primary).
		Foreground(p.text).
		Padding(0, 1).
		MarginTop(1).
		MarginBottom(1)
}

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	colors  palette
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner drawing on out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		colors:  currentPalette(),
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	gradient := s.colors.gradient
	spinIdx := s.frame % len(chars)
	spinColor := gradient[s.frame%len(gradient)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradient[(s.frame+i)%len(gradient)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(s.colors.textMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(s.colors.text).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(s.colors.success).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(s.colors.success).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

func runQueryCmd(cmd *cobra.Command, deps *Dependencies, globals *globalOptions, opts *queryOptions, question string) error {
	cfg, err := resolveConfig(cmd, deps, globals)
	if err != nil {
		return err
	}
	logger := initLogger(deps, cfg)
	return runQuery(cmd.Context(), deps, cfg, logger, question, *opts)
}

// runQuery sends a single question and prints the bot entry the widget would
// show for it. Transport failures are reported on stderr and returned.
func runQuery(ctx context.Context, deps *Dependencies, cfg config.Config, logger zerolog.Logger, question string, opts queryOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty: %w", apierrors.ErrEmptyQuery)
	}
	render.SetTUITheme(cfg.TUITheme)

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	decorated := !opts.raw
	if cfg.Verbose && decorated {
		fmt.Fprintf(deps.Stderr, "[verbose] Endpoint: %s\n", client.Endpoint())
		if t := cfg.Timeout(); t > 0 {
			fmt.Fprintf(deps.Stderr, "[verbose] Timeout: %s\n", t)
		}
	}

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Asking "+cfg.Branding.AssistantName)
		spin.start()
	}

	startTime := time.Now()
	reply, askErr := client.Ask(ctx, question)
	requestDuration := time.Since(startTime)

	if decorated {
		if askErr != nil {
			spin.stopWithError()
			fmt.Fprintln(deps.Stderr, formatErrorMessage(askErr, "Request failed"))
		} else {
			spin.stopWithSuccess("Done")
		}
	}

	if cfg.Verbose && decorated {
		fmt.Fprintf(deps.Stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	text := widget.ReplyText(reply, askErr)

	if err := writeReply(deps, cfg, text, opts); err != nil {
		return err
	}

	if askErr != nil {
		return fmt.Errorf("request failed: %w", askErr)
	}
	return nil
}

// writeReply emits the bot entry to the output file or stdout.
func writeReply(deps *Dependencies, cfg config.Config, text string, opts queryOptions) error {
	// Raw output mode: output only the reply text
	if opts.raw {
		if opts.output != "" {
			if err := os.WriteFile(opts.output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}
		fmt.Fprint(deps.Stdout, text)
		return nil
	}

	fmt.Fprintln(deps.Stderr)
	colors := currentPalette()

	if cfg.CopyToClipboard && deps.Clipboard != nil {
		if err := deps.Clipboard(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colors.warning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		} else {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colors.success).Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		successMsg := lipgloss.NewStyle().Foreground(colors.success).Render(
			fmt.Sprintf("✓ Reply saved to %s", opts.output),
		)
		fmt.Fprintln(deps.Stderr, successMsg)
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(deps.Stdout, colors.botLabel().Render("● "+cfg.Branding.AssistantName))

	rendered, err := render.Markdown(text, render.OptionsFromConfig(cfg).WithWidth(contentWidth))
	if err != nil {
		rendered = text
	}
	rendered = strings.TrimRight(rendered, "\n")

	fmt.Fprintln(deps.Stdout, colors.botBubble().Width(bubbleWidth).Render(rendered))
	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	colors := currentPalette()
	errorStyle := lipgloss.NewStyle().Foreground(colors.err)
	dimStyle := lipgloss.NewStyle().Foreground(colors.textDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	} else {
		switch {
		case apierrors.IsTimeoutError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise --timeout or set it to 0"))
		case apierrors.IsNetworkError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Is the assistant service running? Try 'askwidget serve'"))
		case apierrors.IsParseError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: The endpoint did not answer with JSON"))
		case errors.Is(err, apierrors.ErrReplyTooLarge):
			sb.WriteString(dimStyle.Render("\n  Hint: The reply exceeded the size limit"))
		}
	}

	return sb.String()
}
