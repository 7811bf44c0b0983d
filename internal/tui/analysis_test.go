package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asengupta/deepread/internal/assist"
)

func TestOpenActionPopupRequiresSelection(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)

	m.Update(keyEnter())
	if m.stage != stageReader || m.popup != nil {
		t.Fatalf("enter without a selection should stay in the reader")
	}
	if !strings.Contains(m.infoMessage, "Highlight") {
		t.Fatalf("info = %q", m.infoMessage)
	}
}

func TestActionPopupRanksMathSelectionsFirst(t *testing.T) {
	m := newTestModel(t)
	m.reader.paperID = "p1"
	m.viewportLines = []string{"E = mc^2 shows mass-energy equivalence"}
	m.lineCount = 1
	m.mode = modeHighlight
	m.selectionActive = true
	m.selectionAnchor = 0
	m.cursorLine = 0

	m.openActionPopup()
	if m.stage != stageActions || m.popup == nil {
		t.Fatalf("popup did not open")
	}
	if got := m.popup.actions[0].ID; got != assist.ActionMath {
		t.Fatalf("first action = %q, want %q", got, assist.ActionMath)
	}
}

func TestActionPopupRanksProseSelectionsByExplanation(t *testing.T) {
	m := newTestModel(t)
	m.reader.paperID = "p1"
	m.viewportLines = []string{"The encoder reads the whole sentence at once."}
	m.lineCount = 1
	m.mode = modeHighlight
	m.selectionActive = true
	m.selectionAnchor = 0
	m.cursorLine = 0

	m.openActionPopup()
	if m.popup == nil {
		t.Fatalf("popup did not open")
	}
	want := []assist.ActionID{assist.ActionFeynman, assist.ActionDeep, assist.ActionMath, assist.ActionChat}
	for i, action := range m.popup.actions {
		if action.ID != want[i] {
			t.Fatalf("action %d = %q, want %q", i, action.ID, want[i])
		}
	}
}

func TestActionPopupCursorStaysInBounds(t *testing.T) {
	m := newTestModel(t)
	m.stage = stageActions
	m.popup = &actionPopup{actions: assist.RankActions("plain prose"), selection: "plain prose"}

	m.Update(keyRune('k'))
	if m.popup.cursor != 0 {
		t.Fatalf("cursor moved above the first action")
	}
	for i := 0; i < 10; i++ {
		m.Update(keyRune('j'))
	}
	if m.popup.cursor != len(m.popup.actions)-1 {
		t.Fatalf("cursor = %d, want %d", m.popup.cursor, len(m.popup.actions)-1)
	}
}

func TestLaunchChatActionSeedsTheConversation(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.stage = stageActions
	m.popup = &actionPopup{
		actions:   assist.RankActions("plain prose"),
		cursor:    3,
		selection: "the chosen fragment",
	}

	m.Update(keyEnter())
	if m.stage != stageChat {
		t.Fatalf("stage = %v, want %v", m.stage, stageChat)
	}
	if m.chat.context != "the chosen fragment" {
		t.Fatalf("chat context = %q", m.chat.context)
	}
	if m.chat.paperID != "p1" {
		t.Fatalf("chat paperID = %q", m.chat.paperID)
	}
	if m.mode != modeInsert || !m.composer.Focused() {
		t.Fatalf("composer should take focus for chat")
	}
}

func TestEscLeavesIdleChatForReader(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.openChatSeeded("context")

	m.Update(keyEsc())
	if m.stage != stageReader {
		t.Fatalf("stage = %v, want %v", m.stage, stageReader)
	}
	if m.composer.Focused() {
		t.Fatalf("composer should blur when leaving the chat")
	}
}

func TestChatTranscriptSurvivesReentry(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.openChatSeeded("context")
	m.chat.turns = []chatTurn{{id: "t1", role: assist.RoleUser, content: "hello"}}

	m.Update(keyEsc())
	m.openChatSeeded("")
	if len(m.chat.turns) != 1 {
		t.Fatalf("transcript lost on reentry: %d turns", len(m.chat.turns))
	}
	if m.chat.context != "context" {
		t.Fatalf("context lost on reentry: %q", m.chat.context)
	}
}

func TestChatResetsForADifferentPaper(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.chat = chatState{paperID: "other", turns: []chatTurn{{id: "t1", role: assist.RoleUser, content: "old"}}}

	m.openChatSeeded("fresh context")
	if len(m.chat.turns) != 0 {
		t.Fatalf("transcript from another paper survived")
	}
	if m.chat.paperID != "p1" {
		t.Fatalf("chat paperID = %q, want p1", m.chat.paperID)
	}
}

func TestChatHistorySkipsPendingAndFailedTurns(t *testing.T) {
	m := newTestModel(t)
	m.chat = chatState{paperID: "p1", turns: []chatTurn{
		{id: "t1", role: assist.RoleUser, content: "q1"},
		{id: "t2", role: assist.RoleAssistant, content: "a1"},
		{id: "t3", role: assist.RoleAssistant, content: "", errText: "failed"},
		{id: "t4", role: assist.RoleAssistant, pending: true},
	}}

	history := m.chatHistory()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != assist.RoleUser || history[1].Role != assist.RoleAssistant {
		t.Fatalf("history roles = %+v", history)
	}
}

func TestSubmitChatMessageGuards(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.openChatSeeded("context")

	_, cmd := m.submitChatMessage()
	if cmd != nil || len(m.chat.turns) != 0 {
		t.Fatalf("empty message should not submit")
	}

	m.stream = &streamState{id: "s1", target: streamTargetChat, cancel: func() {}}
	m.composer.SetValue("second question")
	_, cmd = m.submitChatMessage()
	if cmd != nil || len(m.chat.turns) != 0 {
		t.Fatalf("submit should wait for the running answer")
	}
	if !strings.Contains(m.infoMessage, "Wait") {
		t.Fatalf("info = %q", m.infoMessage)
	}
}

func TestResultContinuesInChat(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.stage = stageResult
	m.result = &resultView{
		paperID:   "p1",
		action:    assist.Action{ID: assist.ActionDeep, Label: "Deep Analysis"},
		selection: "the studied fragment",
		raw:       "done answer",
	}

	m.Update(keyRune('c'))
	if m.stage != stageChat {
		t.Fatalf("stage = %v, want %v", m.stage, stageChat)
	}
	if m.result != nil {
		t.Fatalf("result should close when chat takes over")
	}
	if m.chat.context != "the studied fragment" {
		t.Fatalf("chat context = %q", m.chat.context)
	}
}

func TestEscCancelsRunningResult(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	canceled := mountResultStream(m, "s1")

	m.Update(keyEsc())
	if !*canceled {
		t.Fatalf("esc should cancel the running stream")
	}
	if m.stream != nil || m.result != nil {
		t.Fatalf("stream or result state survived esc")
	}
	if m.stage != stageReader {
		t.Fatalf("stage = %v, want %v", m.stage, stageReader)
	}
	if !strings.Contains(m.infoMessage, "canceled") {
		t.Fatalf("info = %q", m.infoMessage)
	}
}

// TestLaunchActionStreamsIntoResult drives the full path: selection, popup,
// launch, SSE deltas, completion.
func TestLaunchActionStreamsIntoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/workbench/analyze/smart/stream" {
			t.Errorf("stream path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"content\":\"Hello \"}\n\n"))
		w.Write([]byte("data: {\"content\":\"world.\"}\n\n"))
		w.Write([]byte("data: {\"done\":true}\n\n"))
	}))
	defer srv.Close()

	m := newTestModel(t)
	m.config.Assist = assist.New(assist.Config{BaseURL: srv.URL})
	openTestPaper(t, m)
	m.jumpToSection("Introduction")
	m.Update(keyRune('v'))
	m.Update(keyRune('j'))

	m.Update(keyEnter())
	if m.stage != stageActions || m.popup == nil {
		t.Fatalf("popup did not open for the selection")
	}

	_, cmd := m.Update(keyEnter())
	if m.stage != stageResult {
		t.Fatalf("stage = %v, want %v", m.stage, stageResult)
	}
	if m.result == nil || !m.result.running {
		t.Fatalf("result view not armed")
	}
	if cmd == nil {
		t.Fatalf("launch returned no command")
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("launch command returned %T, want tea.BatchMsg", cmd())
	}
	var wait tea.Cmd
	for _, sub := range batch {
		if msg := sub(); msg != nil {
			if delta, isDelta := msg.(streamDeltaMsg); isDelta {
				wait = m.handleStreamDelta(delta)
			}
		}
	}
	for i := 0; i < 16 && wait != nil && m.stream != nil; i++ {
		switch msg := wait().(type) {
		case streamDeltaMsg:
			wait = m.handleStreamDelta(msg)
		case streamClosedMsg:
			wait = m.handleStreamClosed(msg)
		default:
			t.Fatalf("unexpected stream message %T", msg)
		}
	}

	if m.stream != nil {
		t.Fatalf("stream did not finish")
	}
	if m.result.running {
		t.Fatalf("result still running")
	}
	if m.result.raw != "Hello world." {
		t.Fatalf("raw = %q, want the concatenated answer", m.result.raw)
	}
	if m.result.rendered == "" {
		t.Fatalf("finished answer should be rendered")
	}
}

func TestBuildChatContentShowsContextAndTurns(t *testing.T) {
	m := newTestModel(t)
	m.chat = chatState{
		paperID: "p1",
		context: "selected fragment",
		turns: []chatTurn{
			{id: "t1", role: assist.RoleUser, content: "What does it mean?"},
			{id: "t2", role: assist.RoleAssistant, content: "It means attention.", rendered: "It means attention."},
		},
	}

	content := stripANSI(m.buildChatContent())
	if !strings.Contains(content, "Context: selected fragment") {
		t.Fatalf("context line missing: %q", content)
	}
	if !strings.Contains(content, "What does it mean?") {
		t.Fatalf("user turn missing")
	}
	if !strings.Contains(content, "It means attention.") {
		t.Fatalf("assistant turn missing")
	}
}
