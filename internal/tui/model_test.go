package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/lnmiit/askwidget/internal/api"
	"github.com/lnmiit/askwidget/internal/config"
	"github.com/lnmiit/askwidget/internal/models"
	"github.com/lnmiit/askwidget/internal/widget"
)

// runCmd executes cmd and flattens batches into the produced messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findAskResult(t *testing.T, msgs []tea.Msg) askResultMsg {
	t.Helper()
	for _, msg := range msgs {
		if res, ok := msg.(askResultMsg); ok {
			return res
		}
	}
	t.Fatalf("no askResultMsg among %d messages", len(msgs))
	return askResultMsg{}
}

func newTestModel(client api.AssistantClient) Model {
	m := NewChatModel(client, config.DefaultConfig(), zerolog.Nop())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	updated, _ := m.Update(keyRunes(s))
	return updated.(Model)
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: k})
	return updated.(Model), cmd
}

func TestNewChatModel(t *testing.T) {
	m := NewChatModel(&api.MockAssistantClient{}, config.DefaultConfig(), zerolog.Nop())

	if m.widget == nil {
		t.Fatal("widget should be initialized")
	}
	if m.widget.State() != widget.Closed {
		t.Errorf("expected closed widget, got %s", m.widget.State())
	}
	if m.ready {
		t.Error("model should not be ready before a WindowSizeMsg")
	}
	if m.branding.LauncherLabel != "Ask LNMIIT" {
		t.Errorf("unexpected launcher label %q", m.branding.LauncherLabel)
	}
	if m.Init() == nil {
		t.Error("Init should return a command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{})

	if !m.ready {
		t.Fatal("model should be ready after WindowSizeMsg")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("dimensions = %dx%d", m.width, m.height)
	}
	if m.viewport.Width != 96 {
		t.Errorf("viewport width = %d, want 96", m.viewport.Width)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 10})
	m = updated.(Model)
	if m.viewport.Height != 5 {
		t.Errorf("viewport height should clamp to 5, got %d", m.viewport.Height)
	}
}

func TestModel_View_NotReady(t *testing.T) {
	m := NewChatModel(&api.MockAssistantClient{}, config.DefaultConfig(), zerolog.Nop())
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("expected initializing view")
	}
}

func TestModel_ClosedShowsLanding(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{})
	view := m.View()

	for _, want := range []string{"Welcome to LNMIIT", "Ask LNMIIT"} {
		if !strings.Contains(view, want) {
			t.Errorf("landing view should contain %q", want)
		}
	}
}

func TestModel_ToggleOpenAndClosed(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{})

	m, _ = press(t, m, tea.KeyEnter)
	if m.widget.State() != widget.OpenIdle {
		t.Fatalf("enter on landing should open, state %s", m.widget.State())
	}
	if !strings.Contains(m.View(), "How can I help you today?") {
		t.Error("open widget with empty transcript should show the greeting")
	}

	m, _ = press(t, m, tea.KeyEsc)
	if m.widget.State() != widget.Closed {
		t.Errorf("esc should close, state %s", m.widget.State())
	}

	m, _ = press(t, m, tea.KeyTab)
	if !m.widget.IsOpen() {
		t.Error("tab should open")
	}
	m, _ = press(t, m, tea.KeyTab)
	if m.widget.IsOpen() {
		t.Error("tab should close")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{})

	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q on landing should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}

	m = m.Opened()
	_, cmd = press(t, m, tea.KeyCtrlC)
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}

	// q is ordinary input while open
	m = typeText(t, m, "q")
	if m.widget.Input() != "q" {
		t.Errorf("input = %q", m.widget.Input())
	}
}

func TestModel_SubmitSuccess(t *testing.T) {
	client := &api.MockAssistantClient{Reply: "The library is in Block A."}
	m := newTestModel(client).Opened()

	m = typeText(t, m, "Where is the library?")
	m, cmd := press(t, m, tea.KeyEnter)

	if !m.widget.InFlight() {
		t.Fatal("accepted submit should set in-flight")
	}
	if m.textarea.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.textarea.Value())
	}
	if !strings.Contains(m.viewport.View(), "thinking") {
		t.Error("thinking placeholder should follow the last entry")
	}

	res := findAskResult(t, runCmd(cmd))
	if client.CallCount() != 1 || client.LastQuery != "Where is the library?" {
		t.Errorf("calls=%d query=%q", client.CallCount(), client.LastQuery)
	}

	updated, _ := m.Update(res)
	m = updated.(Model)

	want := []models.Message{
		{Role: models.RoleUser, Content: "Where is the library?"},
		{Role: models.RoleBot, Content: "The library is in Block A."},
	}
	got := m.widget.Transcript()
	if len(got) != len(want) {
		t.Fatalf("transcript = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if m.widget.InFlight() {
		t.Error("in-flight should be cleared")
	}
	if strings.Contains(m.viewport.View(), "thinking") {
		t.Error("thinking placeholder should be removed")
	}
}

func TestModel_SubmitFailure(t *testing.T) {
	client := &api.MockAssistantClient{Err: errors.New("connection refused")}
	m := newTestModel(client).Opened()

	m = typeText(t, m, "test")
	m, cmd := press(t, m, tea.KeyEnter)
	updated, _ := m.Update(findAskResult(t, runCmd(cmd)))
	m = updated.(Model)

	got := m.widget.Transcript()
	if len(got) != 2 {
		t.Fatalf("transcript = %+v", got)
	}
	if got[1].Content != models.ConnectErrorReply {
		t.Errorf("bot entry = %q", got[1].Content)
	}
	if m.widget.InFlight() {
		t.Error("in-flight should be cleared after failure")
	}
}

func TestModel_EmptyReplyUsesFallback(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{}).Opened()

	m = typeText(t, m, "hello")
	m, cmd := press(t, m, tea.KeyEnter)
	updated, _ := m.Update(findAskResult(t, runCmd(cmd)))
	m = updated.(Model)

	reply, ok := m.widget.LastBotReply()
	if !ok || reply != models.FallbackReply {
		t.Errorf("reply = %q, %v", reply, ok)
	}
}

func TestModel_BlankSubmitIgnored(t *testing.T) {
	client := &api.MockAssistantClient{Reply: "x"}
	m := newTestModel(client).Opened()

	m = typeText(t, m, "   ")
	m, cmd := press(t, m, tea.KeyEnter)

	if cmd != nil {
		t.Error("blank submit should not issue a command")
	}
	if m.widget.Len() != 0 || m.widget.InFlight() {
		t.Error("blank submit should not change the widget")
	}
	if client.CallCount() != 0 {
		t.Error("blank submit should not reach the client")
	}
}

func TestModel_SubmitWhileInFlightIgnored(t *testing.T) {
	client := &api.MockAssistantClient{Reply: "x"}
	m := newTestModel(client).Opened()

	m = typeText(t, m, "first")
	m, _ = press(t, m, tea.KeyEnter)

	m = typeText(t, m, "second")
	m, cmd := press(t, m, tea.KeyEnter)
	if cmd != nil {
		t.Error("second submit should be ignored while in flight")
	}
	if m.widget.Len() != 1 {
		t.Errorf("transcript len = %d, want 1", m.widget.Len())
	}
	if m.textarea.Value() != "second" {
		t.Errorf("pending input should be kept, got %q", m.textarea.Value())
	}
}

func TestModel_ToggleWhileInFlight(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{Reply: "late"}).Opened()

	m = typeText(t, m, "question")
	m, cmd := press(t, m, tea.KeyEnter)
	m, _ = press(t, m, tea.KeyEsc)

	if m.widget.State() != widget.Closed || !m.widget.InFlight() {
		t.Fatalf("state=%s inFlight=%v", m.widget.State(), m.widget.InFlight())
	}

	updated, _ := m.Update(findAskResult(t, runCmd(cmd)))
	m = updated.(Model)
	if m.widget.Len() != 2 || m.widget.InFlight() {
		t.Error("reply should land while closed")
	}

	m, _ = press(t, m, tea.KeyEnter)
	if !strings.Contains(m.viewport.View(), "late") {
		t.Error("reopened widget should show the reply")
	}
}

func TestModel_StrayResultIgnored(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{}).Opened()

	updated, _ := m.Update(askResultMsg{reply: "stray"})
	m = updated.(Model)
	if m.widget.Len() != 0 {
		t.Error("result without a pending query should be ignored")
	}
}

func TestModel_CopyLastReply(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{Reply: "copy me"}).Opened()

	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}

	m, cmd := press(t, m, tea.KeyCtrlY)
	if cmd == nil {
		t.Error("copy should schedule a status reset")
	}
	if m.status != "Nothing to copy yet" {
		t.Errorf("status = %q", m.status)
	}

	m = typeText(t, m, "hi")
	m, sendCmd := press(t, m, tea.KeyEnter)
	updated, _ := m.Update(findAskResult(t, runCmd(sendCmd)))
	m = updated.(Model)

	m, _ = press(t, m, tea.KeyCtrlY)
	if copied != "copy me" {
		t.Errorf("copied %q", copied)
	}
	if m.status != "Copied last reply" {
		t.Errorf("status = %q", m.status)
	}

	updated, _ = m.Update(clearStatusMsg{})
	if updated.(Model).status != "" {
		t.Error("status should clear")
	}
}

func TestModel_CopyFailure(t *testing.T) {
	m := newTestModel(&api.MockAssistantClient{Reply: "r"}).Opened()
	m.copyFn = func(string) error { return errors.New("no clipboard") }

	m = typeText(t, m, "hi")
	m, cmd := press(t, m, tea.KeyEnter)
	updated, _ := m.Update(findAskResult(t, runCmd(cmd)))
	m = updated.(Model)

	m, _ = press(t, m, tea.KeyCtrlY)
	if m.status != "Could not copy to clipboard" {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_InterleavedOrder(t *testing.T) {
	client := &api.MockAssistantClient{}
	m := newTestModel(client).Opened()

	for i, q := range []string{"one", "two", "three"} {
		client.Reply = "reply " + q
		m = typeText(t, m, q)
		var cmd tea.Cmd
		m, cmd = press(t, m, tea.KeyEnter)
		updated, _ := m.Update(findAskResult(t, runCmd(cmd)))
		m = updated.(Model)

		if m.widget.Len() != 2*(i+1) {
			t.Fatalf("after %q len = %d", q, m.widget.Len())
		}
	}

	for i, msg := range m.widget.Transcript() {
		wantUser := i%2 == 0
		if msg.IsUser() != wantUser {
			t.Errorf("entry %d role = %s", i, msg.Role)
		}
	}
}
