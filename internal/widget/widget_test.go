package widget

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lnmiit/askwidget/internal/models"
)

func openWidget() *Widget {
	w := New()
	w.Toggle()
	return w
}

// submit types text into the input and presses send.
func submit(w *Widget, text string) (string, bool) {
	w.SetInput(text)
	return w.Submit()
}

func TestNew_IsClosedAndEmpty(t *testing.T) {
	w := New()

	if w.State() != Closed {
		t.Errorf("State() = %v, want closed", w.State())
	}
	if w.InFlight() || w.Len() != 0 || w.Input() != "" {
		t.Error("new widget should be idle and empty")
	}
}

func TestToggle(t *testing.T) {
	w := New()

	w.Toggle()
	if w.State() != OpenIdle {
		t.Errorf("after one toggle State() = %v, want open-idle", w.State())
	}
	w.Toggle()
	if w.State() != Closed {
		t.Errorf("after two toggles State() = %v, want closed", w.State())
	}
}

func TestSubmit_BlankInputIsRejected(t *testing.T) {
	for _, in := range []string{"", " ", "\t\n  "} {
		w := openWidget()
		w.SetInput(in)

		query, ok := w.Submit()
		if ok || query != "" {
			t.Errorf("Submit(%q) accepted", in)
		}
		if w.Len() != 0 {
			t.Errorf("Submit(%q) appended %d entries", in, w.Len())
		}
		if w.InFlight() {
			t.Errorf("Submit(%q) set in-flight", in)
		}
		if w.Input() != in {
			t.Errorf("rejected submit should keep input, got %q", w.Input())
		}
	}
}

func TestSubmit_Accepted(t *testing.T) {
	w := openWidget()
	w.SetInput("  Where is the library?  ")

	query, ok := w.Submit()
	if !ok {
		t.Fatal("Submit() rejected valid input")
	}
	if query != "Where is the library?" {
		t.Errorf("query = %q", query)
	}
	if w.Input() != "" {
		t.Errorf("input not cleared: %q", w.Input())
	}
	if !w.InFlight() || w.State() != OpenAwaiting {
		t.Errorf("State() = %v, want open-awaiting", w.State())
	}

	got := w.Transcript()
	want := []models.Message{{Role: models.RoleUser, Content: "Where is the library?"}}
	assertTranscript(t, got, want)
}

func TestSubmit_WhileInFlightIsIgnored(t *testing.T) {
	w := openWidget()
	if _, ok := submit(w, "first"); !ok {
		t.Fatal("first submit rejected")
	}

	if _, ok := submit(w, "second"); ok {
		t.Error("second submit accepted while in flight")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}

	w.Complete("done", nil)
	if _, ok := submit(w, "third"); !ok {
		t.Error("submit rejected after completion")
	}
}

func TestSubmit_WhileClosedIsIgnored(t *testing.T) {
	w := New()

	if _, ok := submit(w, "hello"); ok {
		t.Error("closed widget accepted a submission")
	}
	if w.Len() != 0 {
		t.Error("closed widget appended an entry")
	}
}

func TestToggle_DuringFlight(t *testing.T) {
	w := openWidget()
	submit(w, "slow question")

	w.Toggle()
	if w.State() != Closed || !w.InFlight() {
		t.Fatalf("State() = %v, InFlight() = %v", w.State(), w.InFlight())
	}

	if !w.Complete("late answer", nil) {
		t.Fatal("Complete ignored while closed")
	}
	if w.InFlight() {
		t.Error("in-flight not cleared")
	}

	w.Toggle()
	if w.State() != OpenIdle {
		t.Errorf("State() = %v, want open-idle", w.State())
	}
	if last, _ := w.LastBotReply(); last != "late answer" {
		t.Errorf("LastBotReply() = %q", last)
	}
}

func TestComplete_Outcomes(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{"reply", "The library is in Block A.", nil, "The library is in Block A."},
		{"missing response", "", nil, "No response received."},
		{"network failure", "", errors.New("connection refused"), "⚠️ Sorry, I couldn't connect to the server."},
		{"failure hides partial reply", "partial", errors.New("status 500"), "⚠️ Sorry, I couldn't connect to the server."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := openWidget()
			submit(w, "question")

			if !w.Complete(tt.reply, tt.err) {
				t.Fatal("Complete ignored")
			}
			if w.InFlight() {
				t.Error("in-flight not cleared")
			}
			if w.State() != OpenIdle {
				t.Errorf("State() = %v", w.State())
			}
			tr := w.Transcript()
			if len(tr) != 2 {
				t.Fatalf("len = %d, want 2", len(tr))
			}
			if tr[1].Role != models.RoleBot || tr[1].Content != tt.want {
				t.Errorf("bot entry = %+v, want %q", tr[1], tt.want)
			}
		})
	}
}

func TestComplete_WithoutFlightIsIgnored(t *testing.T) {
	w := openWidget()

	if w.Complete("stray", nil) {
		t.Error("Complete accepted with nothing in flight")
	}
	if w.Len() != 0 {
		t.Error("stray completion appended an entry")
	}
}

func TestScenario_Library(t *testing.T) {
	w := openWidget()
	w.SetInput("Where is the library?")
	w.Submit()
	w.Complete("The library is in Block A.", nil)

	assertTranscript(t, w.Transcript(), []models.Message{
		{Role: models.RoleUser, Content: "Where is the library?"},
		{Role: models.RoleBot, Content: "The library is in Block A."},
	})
}

func TestScenario_NetworkFailure(t *testing.T) {
	w := openWidget()
	w.SetInput("test")
	w.Submit()
	w.Complete("", errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"))

	assertTranscript(t, w.Transcript(), []models.Message{
		{Role: models.RoleUser, Content: "test"},
		{Role: models.RoleBot, Content: "⚠️ Sorry, I couldn't connect to the server."},
	})
	if w.InFlight() {
		t.Error("in-flight not cleared after failure")
	}
}

func TestTranscriptOrder_Interleaves(t *testing.T) {
	w := openWidget()
	var want []models.Message

	for i := 0; i < 20; i++ {
		q := fmt.Sprintf("question %d", i)
		if _, ok := submit(w, q); !ok {
			t.Fatalf("submit %d rejected", i)
		}
		// Noise between submit and completion must not reorder anything.
		submit(w, "ignored while in flight")
		w.Toggle()
		w.Toggle()

		var err error
		reply := fmt.Sprintf("answer %d", i)
		want = append(want, models.Message{Role: models.RoleUser, Content: q})
		switch i % 3 {
		case 1:
			reply = ""
			want = append(want, models.Message{Role: models.RoleBot, Content: models.FallbackReply})
		case 2:
			err = errors.New("boom")
			want = append(want, models.Message{Role: models.RoleBot, Content: models.ConnectErrorReply})
		default:
			want = append(want, models.Message{Role: models.RoleBot, Content: reply})
		}
		w.Complete(reply, err)
	}

	assertTranscript(t, w.Transcript(), want)
}

func TestTranscript_ReturnsCopy(t *testing.T) {
	w := openWidget()
	submit(w, "hi")

	tr := w.Transcript()
	tr[0].Content = "changed"

	if w.Transcript()[0].Content != "hi" {
		t.Error("Transcript() exposed internal slice")
	}
}

func TestLastBotReply(t *testing.T) {
	w := openWidget()
	if _, ok := w.LastBotReply(); ok {
		t.Error("empty widget reported a bot reply")
	}

	submit(w, "one")
	w.Complete("first", nil)
	submit(w, "two")

	if got, ok := w.LastBotReply(); !ok || got != "first" {
		t.Errorf("LastBotReply() = %q, %v", got, ok)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Closed:       "closed",
		OpenIdle:     "open-idle",
		OpenAwaiting: "open-awaiting-response",
		State(99):    "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}

func assertTranscript(t *testing.T, got, want []models.Message) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("transcript length = %d, want %d\n got: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
