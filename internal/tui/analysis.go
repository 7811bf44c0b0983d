package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asengupta/deepread/internal/assist"
)

type actionPopup struct {
	actions   []assist.Action
	cursor    int
	selection string
}

type resultView struct {
	paperID   string
	action    assist.Action
	selection string
	raw       string
	rendered  string
	running   bool
	errText   string
}

type chatTurn struct {
	id       string
	role     string
	content  string
	rendered string
	pending  bool
	errText  string
}

type chatState struct {
	paperID string
	title   string
	context string
	turns   []chatTurn
}

func (m *model) openActionPopup() (tea.Model, tea.Cmd) {
	text := m.selectedText()
	if text == "" {
		m.infoMessage = "Highlight some text first: v, then move."
		return m, nil
	}
	m.popup = &actionPopup{
		actions:   assist.RankActions(text),
		selection: text,
	}
	m.stage = stageActions
	m.infoMessage = "Choose how to read this selection."
	return m, nil
}

func (m *model) closeActionPopup() {
	m.popup = nil
	m.stage = stageReader
	m.infoMessage = "Selection kept. Press Enter to reopen the actions."
}

func (m *model) handleActionsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.popup == nil {
		m.stage = stageReader
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.popup.cursor > 0 {
			m.popup.cursor--
		}
	case "down", "j":
		if m.popup.cursor < len(m.popup.actions)-1 {
			m.popup.cursor++
		}
	case "enter":
		return m.launchAction(m.popup.actions[m.popup.cursor])
	}
	return m, nil
}

func (m *model) launchAction(action assist.Action) (tea.Model, tea.Cmd) {
	popup := m.popup
	m.popup = nil
	m.mode = modeNormal
	m.selectionActive = false
	m.markViewportDirty()
	if action.ID == assist.ActionChat {
		return m.openChatSeeded(popup.selection)
	}
	req := assist.Request{
		Text:       popup.selection,
		PaperID:    m.reader.paperID,
		PaperTitle: m.readerTitle(),
		ActionType: action.ID,
	}
	m.result = &resultView{
		paperID:   m.reader.paperID,
		action:    action,
		selection: popup.selection,
		running:   true,
	}
	m.stage = stageResult
	m.infoMessage = fmt.Sprintf("%s requested. Streaming…", action.Label)
	return m, m.startStream(streamTargetResult, req)
}

func (m *model) handleResultKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.result == nil {
		m.stage = stageReader
		return m, nil
	}
	switch key.String() {
	case "c":
		if !m.result.running {
			selection := m.result.selection
			m.result = nil
			return m.openChatSeeded(selection)
		}
	}
	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(key)
	return m, cmd
}

// closeResult leaves the result window; a running stream is canceled first.
func (m *model) closeResult() {
	if m.result != nil && m.result.running {
		m.cancelStream()
		m.infoMessage = "Analysis canceled."
	} else {
		m.infoMessage = "Back to the reader."
	}
	m.result = nil
	m.stage = stageReader
}

func (m *model) appendResultContent(content string) {
	if m.result == nil {
		return
	}
	m.result.raw += content
}

func (m *model) replaceResultContent(content string) {
	if m.result == nil {
		return
	}
	m.result.raw = content
}

func (m *model) finishResult() {
	if m.result == nil {
		return
	}
	m.result.running = false
	m.result.rendered = m.renderMarkdown(m.result.raw)
	m.infoMessage = "Done. Esc returns to the reader, c continues in chat."
}

func (m *model) failResult(cause error) {
	if m.result == nil {
		return
	}
	m.result.running = false
	m.result.errText = cause.Error()
	m.infoMessage = "Analysis failed."
}

func (m *model) buildResultContent() string {
	r := m.result
	if r == nil {
		return ""
	}
	cb := &contentBuilder{}
	wrap := m.wrapWidth(2)
	cb.WriteLine(sectionHeaderStyle.Render(fmt.Sprintf("%s %s", r.action.Icon, r.action.Label)))
	cb.WriteLine(helperStyle.Render("Selection: " + previewText(r.selection, 140)))
	cb.BlankLine()
	switch {
	case r.errText != "":
		cb.WriteLine(errorStyle.Render(wordwrap.String(r.errText, wrap)))
	case r.running && r.raw == "":
		cb.WriteLine(helperStyle.Render(fmt.Sprintf("%s Waiting for the first words…", m.spinner.View())))
	case r.running:
		cb.WriteLine(wordwrap.String(r.raw, wrap))
	default:
		body := r.rendered
		if body == "" {
			body = wordwrap.String(r.raw, wrap)
		}
		cb.WriteLine(body)
	}
	return cb.String()
}

func (m *model) openChat() (tea.Model, tea.Cmd) {
	return m.openChatSeeded(m.selectedText())
}

// openChatSeeded enters the chat, carrying the given selection as the shared
// context for subsequent questions. The transcript survives leaving and
// re-entering as long as the same paper stays open.
func (m *model) openChatSeeded(selection string) (tea.Model, tea.Cmd) {
	if m.chat.paperID != m.reader.paperID {
		m.chat = chatState{paperID: m.reader.paperID, title: m.readerTitle()}
	}
	if selection != "" {
		m.chat.context = selection
	}
	m.stage = stageChat
	m.mode = modeInsert
	m.selectionActive = false
	m.composer.Placeholder = composerChatPlaceholder
	m.composer.SetValue("")
	m.composer.Focus()
	m.infoMessage = "Chat open. Enter sends, Ctrl+R resets, Esc leaves."
	return m, textinput.Blink
}

func (m *model) handleChatKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		return m.submitChatMessage()
	case tea.KeyCtrlR:
		m.resetChat()
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.pane, cmd = m.pane.Update(key)
		return m, cmd
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return m, cmd
}

func (m *model) submitChatMessage() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		m.infoMessage = "Type a message first."
		return m, nil
	}
	if m.stream != nil && m.stream.target == streamTargetChat {
		m.infoMessage = "Wait for the current answer, or press Esc to cancel it."
		return m, nil
	}
	m.composer.SetValue("")
	history := m.chatHistory()
	m.chat.turns = append(m.chat.turns,
		chatTurn{id: uuid.NewString(), role: assist.RoleUser, content: text},
		chatTurn{id: uuid.NewString(), role: assist.RoleAssistant, pending: true},
	)
	req := assist.Request{
		Text:        m.chat.context,
		PaperID:     m.chat.paperID,
		PaperTitle:  m.chat.title,
		ActionType:  assist.ActionChat,
		ChatHistory: history,
		UserMessage: text,
	}
	if req.Text == "" {
		req.Text = text
	}
	m.infoMessage = "Streaming answer…"
	return m, m.startStream(streamTargetChat, req)
}

func (m *model) chatHistory() []assist.ChatTurn {
	var history []assist.ChatTurn
	for _, turn := range m.chat.turns {
		if turn.pending || turn.errText != "" {
			continue
		}
		history = append(history, assist.ChatTurn{Role: turn.role, Content: turn.content})
	}
	return history
}

func (m *model) pendingChatTurn() *chatTurn {
	for i := len(m.chat.turns) - 1; i >= 0; i-- {
		if m.chat.turns[i].pending {
			return &m.chat.turns[i]
		}
	}
	return nil
}

func (m *model) appendChatContent(content string) {
	if turn := m.pendingChatTurn(); turn != nil {
		turn.content += content
	}
}

func (m *model) replaceChatContent(content string) {
	if turn := m.pendingChatTurn(); turn != nil {
		turn.content = content
	}
}

func (m *model) finishChatTurn() {
	if turn := m.pendingChatTurn(); turn != nil {
		turn.pending = false
		turn.rendered = m.renderMarkdown(turn.content)
	}
	m.infoMessage = "Answer complete."
}

func (m *model) failChatTurn(cause error) {
	if turn := m.pendingChatTurn(); turn != nil {
		turn.pending = false
		turn.errText = cause.Error()
	}
	m.infoMessage = "Answer failed."
}

// cancelChatTurn stops the streaming answer but keeps whatever arrived.
func (m *model) cancelChatTurn() {
	m.cancelStream()
	if turn := m.pendingChatTurn(); turn != nil {
		turn.pending = false
		if turn.content == "" {
			turn.errText = "canceled"
		}
	}
	m.infoMessage = "Answer canceled."
}

func (m *model) resetChat() {
	if m.stream != nil && m.stream.target == streamTargetChat {
		m.cancelStream()
	}
	m.chat.turns = nil
	m.infoMessage = "Chat reset."
}

func (m *model) buildChatContent() string {
	cb := &contentBuilder{}
	if m.chat.context != "" {
		cb.WriteLine(helperStyle.Render("Context: " + previewText(m.chat.context, 120)))
		cb.BlankLine()
	}
	if len(m.chat.turns) == 0 {
		cb.WriteLine(helperStyle.Render("Ask anything about the paper. Answers stream in below."))
		return cb.String()
	}
	wrap := m.wrapWidth(4)
	for i, turn := range m.chat.turns {
		if turn.role == assist.RoleUser {
			cb.WriteLine(chatUserStyle.Render("You"))
			cb.WriteLine(indent.String(wordwrap.String(turn.content, wrap), 2))
		} else {
			cb.WriteLine(chatAssistantStyle.Render("DEEP"))
			switch {
			case turn.errText != "" && turn.content == "":
				cb.WriteString(errorStyle.Render("  " + turn.errText))
			case turn.errText != "":
				cb.WriteLine(indent.String(wordwrap.String(turn.content, wrap), 2))
				cb.WriteString(errorStyle.Render("  " + turn.errText))
			case turn.pending && turn.content == "":
				cb.WriteString(helperStyle.Render(fmt.Sprintf("  %s Thinking…", m.spinner.View())))
			case turn.pending:
				cb.WriteString(indent.String(wordwrap.String(turn.content, wrap), 2))
			case turn.rendered != "":
				cb.WriteString(indent.String(turn.rendered, 2))
			default:
				cb.WriteString(indent.String(wordwrap.String(turn.content, wrap), 2))
			}
			cb.BlankLine()
		}
		if i < len(m.chat.turns)-1 {
			cb.BlankLine()
		}
	}
	return cb.String()
}
