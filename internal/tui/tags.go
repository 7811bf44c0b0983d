package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asengupta/deepread/internal/api"
)

type tagEntry struct {
	name       string
	enabled    bool
	suggested  bool
	confidence float64
	reason     string
}

type tagsState struct {
	paperID     string
	title       string
	entries     []tagEntry
	cursor      int
	loading     bool
	classifying bool
	saving      bool
	confirmed   bool
}

func (m *model) openTags(paperID, title string) (tea.Model, tea.Cmd) {
	m.tags = tagsState{paperID: paperID, title: title, loading: true}
	m.tagsReturn = m.stage
	m.stage = stageTags
	m.mode = modeNormal
	m.infoMessage = fmt.Sprintf("Loading tags for %s…", previewText(title, 40))
	return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindTags, loadTagsJob(m.config.Client, paperID)))
}

func (m *model) closeTags() {
	m.composer.Blur()
	m.mode = modeNormal
	m.stage = m.tagsReturn
	m.infoMessage = "Left the tag editor."
}

func (m *model) handleTagsKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeInsert {
		if key.Type == tea.KeyEnter {
			name := strings.TrimSpace(m.composer.Value())
			m.composer.SetValue("")
			m.composer.Blur()
			m.mode = modeNormal
			if name == "" {
				m.infoMessage = "Empty tag discarded."
				return m, nil
			}
			if entry := m.tagEntry(name); entry != nil {
				entry.enabled = true
				m.infoMessage = fmt.Sprintf("Tag %q enabled.", name)
				return m, nil
			}
			m.tags.entries = append(m.tags.entries, tagEntry{name: name, enabled: true})
			m.tags.cursor = len(m.tags.entries) - 1
			m.infoMessage = fmt.Sprintf("Tag %q added. Enter saves the set.", name)
			return m, nil
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(key)
		return m, cmd
	}
	switch key.String() {
	case "up", "k":
		m.moveTagsCursor(-1)
	case "down", "j":
		m.moveTagsCursor(1)
	case " ":
		if m.tags.cursor >= 0 && m.tags.cursor < len(m.tags.entries) {
			entry := &m.tags.entries[m.tags.cursor]
			entry.enabled = !entry.enabled
		}
	case "a":
		m.mode = modeInsert
		m.composer.Placeholder = composerTagPlaceholder
		m.composer.SetValue("")
		m.composer.Focus()
		m.infoMessage = "Type a tag, Enter adds it."
		return m, textinput.Blink
	case "R":
		if m.tags.classifying {
			m.infoMessage = "Classification already running."
			return m, nil
		}
		m.tags.classifying = true
		m.infoMessage = "Asking the classifier for tag suggestions…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindClassify, classifyPaperJob(m.config.Client, m.tags.paperID)))
	case "enter":
		return m.saveTags()
	case "?":
		m.toggleHelp()
	default:
		var cmd tea.Cmd
		m.pane, cmd = m.pane.Update(key)
		return m, cmd
	}
	return m, nil
}

func (m *model) moveTagsCursor(delta int) {
	if len(m.tags.entries) == 0 {
		return
	}
	target := m.tags.cursor + delta
	if target < 0 {
		target = 0
	}
	if target >= len(m.tags.entries) {
		target = len(m.tags.entries) - 1
	}
	m.tags.cursor = target
}

func (m *model) tagEntry(name string) *tagEntry {
	for i := range m.tags.entries {
		if strings.EqualFold(m.tags.entries[i].name, name) {
			return &m.tags.entries[i]
		}
	}
	return nil
}

func (m *model) saveTags() (tea.Model, tea.Cmd) {
	if m.tags.saving {
		m.infoMessage = "Save already running."
		return m, nil
	}
	var confirmed []string
	for _, entry := range m.tags.entries {
		if entry.enabled {
			confirmed = append(confirmed, entry.name)
		}
	}
	m.tags.saving = true
	m.infoMessage = fmt.Sprintf("Saving %d tag(s)…", len(confirmed))
	return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindTags, confirmTagsJob(m.config.Client, m.tags.paperID, confirmed)))
}

// applyPaperTags resyncs the editor with the backend's tag state, keeping
// confirmed tags enabled and suggestions toggled off.
func (m *model) applyPaperTags(tags api.PaperTags) {
	m.tags.confirmed = tags.TagsConfirmed
	entries := make([]tagEntry, 0, len(tags.Tags)+len(tags.SuggestedTags))
	seen := map[string]bool{}
	for _, name := range tags.Tags {
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, tagEntry{name: name, enabled: true})
	}
	for _, name := range tags.SuggestedTags {
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, tagEntry{name: name, suggested: true})
	}
	m.tags.entries = entries
	if m.tags.cursor >= len(entries) {
		m.tags.cursor = len(entries) - 1
	}
	if m.tags.cursor < 0 {
		m.tags.cursor = 0
	}
}

func (m *model) handleTagsLoaded(msg tagsLoadedMsg) tea.Cmd {
	if m.stage != stageTags || m.tags.paperID != msg.paperID {
		return nil
	}
	m.tags.loading = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Could not load tags."
		return nil
	}
	m.errorMessage = ""
	m.applyPaperTags(msg.tags)
	if len(m.tags.entries) == 0 {
		m.infoMessage = "No tags yet. Press R to classify the paper or a to add one."
	} else {
		m.infoMessage = "space toggles, a adds, R re-classifies, Enter saves."
	}
	return nil
}

func (m *model) handleClassifyResult(msg classifyResultMsg) tea.Cmd {
	if m.stage != stageTags || m.tags.paperID != msg.paperID {
		return nil
	}
	m.tags.classifying = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Classification failed."
		return nil
	}
	m.errorMessage = ""
	for _, suggestion := range msg.result.SuggestedTags {
		if entry := m.tagEntry(suggestion.Name); entry != nil {
			entry.suggested = true
			entry.confidence = suggestion.Confidence
			entry.reason = suggestion.Reason
			continue
		}
		m.tags.entries = append(m.tags.entries, tagEntry{
			name:       suggestion.Name,
			suggested:  true,
			confidence: suggestion.Confidence,
			reason:     suggestion.Reason,
		})
	}
	m.infoMessage = fmt.Sprintf("%d suggestion(s). space toggles, Enter saves.", len(msg.result.SuggestedTags))
	return nil
}

func (m *model) handleTagsSaved(msg tagsSavedMsg) tea.Cmd {
	if m.tags.paperID != msg.paperID {
		return nil
	}
	m.tags.saving = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Saving tags failed."
		return nil
	}
	m.errorMessage = ""
	m.applyPaperTags(msg.tags)
	m.infoMessage = fmt.Sprintf("Saved %d tag(s).", len(msg.tags.Tags))
	return nil
}

func (m *model) buildTagsContent() (string, int) {
	cb := &contentBuilder{}
	focus := -1
	if m.tags.loading {
		cb.WriteLine(helperStyle.Render(fmt.Sprintf("%s Loading tags…", m.spinner.View())))
		return cb.String(), focus
	}
	if m.tags.confirmed {
		cb.WriteLine(helperStyle.Render("Tags confirmed for this paper."))
	}
	if len(m.tags.entries) == 0 {
		cb.WriteLine(helperStyle.Render("No tags yet. Press R to classify the paper or a to add one."))
		return cb.String(), focus
	}
	reasonWrap := m.wrapWidth(10)
	for idx, entry := range m.tags.entries {
		if idx == m.tags.cursor {
			focus = cb.Line()
		}
		cursor := "  "
		if idx == m.tags.cursor {
			cursor = "▸ "
		}
		check := " "
		if entry.enabled {
			check = "x"
		}
		row := fmt.Sprintf("%s[%s] %s", cursor, check, entry.name)
		if entry.suggested && entry.confidence > 0 {
			row = fmt.Sprintf("%s  (%d%%)", row, int(entry.confidence*100+0.5))
		}
		if idx == m.tags.cursor {
			row = currentLineStyle.Render(row)
		}
		cb.WriteLine(row)
		if entry.reason != "" {
			cb.WriteLine(helperStyle.Render(prefixLines(wordwrap.String(entry.reason, reasonWrap), "      ⮑ ")))
		}
	}
	if m.tags.classifying {
		cb.BlankLine()
		cb.WriteLine(helperStyle.Render(fmt.Sprintf("%s Classifying…", m.spinner.View())))
	}
	return cb.String(), focus
}
