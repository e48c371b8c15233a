// Package widget holds the chat widget state machine: visibility, the
// transcript, the pending input and the in-flight flag.
//
// A Widget is owned by a single event loop. Submit hands back the query the
// caller must send; the caller reports the outcome through Complete.
package widget

import (
	"strings"

	"github.com/lnmiit/askwidget/internal/models"
)

// State is the observable widget state.
type State int

const (
	Closed State = iota
	OpenIdle
	OpenAwaiting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenIdle:
		return "open-idle"
	case OpenAwaiting:
		return "open-awaiting-response"
	default:
		return "unknown"
	}
}

// Widget is the chat widget. The zero value is a closed, empty widget.
type Widget struct {
	open       bool
	inFlight   bool
	input      string
	transcript []models.Message
}

// New returns a closed widget with an empty transcript.
func New() *Widget {
	return &Widget{}
}

// Toggle flips visibility. It is allowed while a request is in flight.
func (w *Widget) Toggle() {
	w.open = !w.open
}

// Open shows the widget.
func (w *Widget) Open() {
	w.open = true
}

// IsOpen reports whether the widget is visible.
func (w *Widget) IsOpen() bool {
	return w.open
}

// InFlight reports whether a submitted query has not resolved yet.
func (w *Widget) InFlight() bool {
	return w.inFlight
}

// State reports the combined visibility/in-flight state. A closed widget
// with an outstanding request reports Closed; use InFlight to see it.
func (w *Widget) State() State {
	switch {
	case !w.open:
		return Closed
	case w.inFlight:
		return OpenAwaiting
	default:
		return OpenIdle
	}
}

// SetInput replaces the pending input text.
func (w *Widget) SetInput(text string) {
	w.input = text
}

// Input returns the pending input text.
func (w *Widget) Input() string {
	return w.input
}

// Submit accepts the pending input. It returns the trimmed query to send and
// true, or "" and false when the input is blank, a request is in flight, or
// the widget is closed.
func (w *Widget) Submit() (string, bool) {
	query := strings.TrimSpace(w.input)
	if query == "" || w.inFlight || !w.open {
		return "", false
	}

	w.transcript = append(w.transcript, models.UserMessage(query))
	w.input = ""
	w.inFlight = true
	return query, true
}

// Complete records the outcome of the in-flight query as exactly one bot
// entry and clears the in-flight flag. It is ignored when nothing is in
// flight.
func (w *Widget) Complete(reply string, err error) bool {
	if !w.inFlight {
		return false
	}
	defer func() { w.inFlight = false }()

	w.transcript = append(w.transcript, models.BotMessage(ReplyText(reply, err)))
	return true
}

// ReplyText maps a request outcome onto the bot entry content.
func ReplyText(reply string, err error) string {
	switch {
	case err != nil:
		return models.ConnectErrorReply
	case reply == "":
		return models.FallbackReply
	default:
		return reply
	}
}

// Transcript returns a copy of the transcript in display order.
func (w *Widget) Transcript() []models.Message {
	out := make([]models.Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// Len returns the number of transcript entries.
func (w *Widget) Len() int {
	return len(w.transcript)
}

// LastBotReply returns the newest bot entry, if any.
func (w *Widget) LastBotReply() (string, bool) {
	for i := len(w.transcript) - 1; i >= 0; i-- {
		if w.transcript[i].Role == models.RoleBot {
			return w.transcript[i].Content, true
		}
	}
	return "", false
}
