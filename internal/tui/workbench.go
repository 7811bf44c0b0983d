package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asengupta/deepread/internal/api"
)

type workbenchState struct {
	wb      api.Workbench
	stats   api.WorkbenchStats
	paperID string // empty scopes the view to the whole workbench
	zone    string
	cursor  int
	loading bool
	editing string // item whose reflection is in the composer
}

var workbenchZones = []string{api.ZoneMethods, api.ZoneDatasets, api.ZoneNotes}

func zoneLabel(zone string) string {
	switch zone {
	case api.ZoneDatasets:
		return "Datasets"
	case api.ZoneNotes:
		return "Notes"
	default:
		return "Methods"
	}
}

func (m *model) openWorkbench(paperID string) (tea.Model, tea.Cmd) {
	m.workbench = workbenchState{paperID: paperID, zone: api.ZoneMethods, loading: true}
	m.workbenchReturn = m.stage
	m.stage = stageWorkbench
	m.mode = modeNormal
	if paperID == "" {
		m.infoMessage = "Loading the workbench…"
	} else {
		m.infoMessage = "Loading this paper's workbench items…"
	}
	return m, tea.Batch(m.spinner.Tick, m.reloadWorkbench())
}

func (m *model) closeWorkbench() {
	m.composer.Blur()
	m.mode = modeNormal
	m.workbench.editing = ""
	m.stage = m.workbenchReturn
	m.infoMessage = "Left the workbench."
}

func (m *model) reloadWorkbench() tea.Cmd {
	m.workbench.loading = true
	return m.jobs.Start(jobKindWorkbench, loadWorkbenchJob(m.config.Client, m.workbench.paperID))
}

func (m *model) zoneItems() []api.WorkbenchItem {
	switch m.workbench.zone {
	case api.ZoneDatasets:
		return m.workbench.wb.Datasets
	case api.ZoneNotes:
		return m.workbench.wb.Notes
	default:
		return m.workbench.wb.Methods
	}
}

func (m *model) currentWorkbenchItem() *api.WorkbenchItem {
	items := m.zoneItems()
	if m.workbench.cursor < 0 || m.workbench.cursor >= len(items) {
		return nil
	}
	return &items[m.workbench.cursor]
}

func (m *model) handleWorkbenchKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeInsert {
		if key.Type == tea.KeyEnter {
			reflection := m.composer.Value()
			itemID := m.workbench.editing
			m.composer.SetValue("")
			m.composer.Blur()
			m.mode = modeNormal
			m.workbench.editing = ""
			if itemID == "" {
				return m, nil
			}
			m.infoMessage = "Saving reflection…"
			return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindWorkbench, updateReflectionJob(m.config.Client, itemID, reflection)))
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(key)
		return m, cmd
	}
	switch key.String() {
	case "tab":
		m.cycleZone()
	case "up", "k":
		m.moveWorkbenchCursor(-1)
	case "down", "j":
		m.moveWorkbenchCursor(1)
	case "d":
		item := m.currentWorkbenchItem()
		if item == nil {
			m.infoMessage = "Nothing selected to delete."
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("Deleting %s…", previewText(itemTitle(*item), 40))
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindWorkbench, deleteWorkbenchItemJob(m.config.Client, item.ID)))
	case "r":
		item := m.currentWorkbenchItem()
		if item == nil {
			m.infoMessage = "Nothing selected."
			return m, nil
		}
		if m.workbench.zone != api.ZoneNotes {
			m.infoMessage = "Reflections live on notes. Tab over to the notes zone."
			return m, nil
		}
		m.workbench.editing = item.ID
		m.mode = modeInsert
		m.composer.Placeholder = "What did this note teach you?"
		m.composer.SetValue(itemReflection(*item))
		m.composer.Focus()
		m.infoMessage = "Edit the reflection, Enter saves."
		return m, textinput.Blink
	case "R":
		m.infoMessage = "Reloading the workbench…"
		return m, tea.Batch(m.spinner.Tick, m.reloadWorkbench())
	case "?":
		m.toggleHelp()
	default:
		var cmd tea.Cmd
		m.pane, cmd = m.pane.Update(key)
		return m, cmd
	}
	return m, nil
}

func (m *model) cycleZone() {
	for i, zone := range workbenchZones {
		if zone == m.workbench.zone {
			m.workbench.zone = workbenchZones[(i+1)%len(workbenchZones)]
			m.workbench.cursor = 0
			return
		}
	}
	m.workbench.zone = api.ZoneMethods
	m.workbench.cursor = 0
}

func (m *model) moveWorkbenchCursor(delta int) {
	items := m.zoneItems()
	if len(items) == 0 {
		return
	}
	target := m.workbench.cursor + delta
	if target < 0 {
		target = 0
	}
	if target >= len(items) {
		target = len(items) - 1
	}
	m.workbench.cursor = target
}

func (m *model) handleWorkbenchLoaded(msg workbenchLoadedMsg) tea.Cmd {
	m.workbench.loading = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Could not load the workbench. Press R to retry."
		return nil
	}
	m.errorMessage = ""
	m.workbench.wb = msg.wb
	m.workbench.stats = msg.stats
	if items := m.zoneItems(); m.workbench.cursor >= len(items) {
		m.workbench.cursor = len(items) - 1
	}
	if m.workbench.cursor < 0 {
		m.workbench.cursor = 0
	}
	if m.stage == stageWorkbench {
		m.infoMessage = fmt.Sprintf("%d item(s). Tab switches zones, d deletes, r edits a reflection.", m.workbench.stats.TotalItems)
	}
	return nil
}

func (m *model) handleWorkbenchDeleted(msg workbenchDeletedMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Delete failed."
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = "Item deleted."
	return m.reloadWorkbench()
}

func (m *model) handleReflectionSaved(msg reflectionSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Saving the reflection failed."
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = "Reflection saved."
	if m.stage == stageWorkbench {
		return m.reloadWorkbench()
	}
	return nil
}

// handleCaptureResult lands selections captured from the reader. The workbench
// reloads only when it is on screen; otherwise the refreshed state arrives the
// next time it opens.
func (m *model) handleCaptureResult(msg captureResultMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		switch msg.kind {
		case captureMethod:
			m.infoMessage = "Method capture failed."
		case captureAsset:
			m.infoMessage = "Dataset scan failed."
		default:
			m.infoMessage = "Saving the note failed."
		}
		return nil
	}
	m.errorMessage = ""
	switch msg.kind {
	case captureMethod:
		m.infoMessage = fmt.Sprintf("Method card saved: %s. w opens the workbench.", previewText(msg.label, 50))
	case captureAsset:
		m.infoMessage = fmt.Sprintf("Captured %s. w opens the workbench.", previewText(msg.label, 50))
	default:
		m.infoMessage = "Note saved. w opens the workbench."
	}
	if m.stage == stageWorkbench {
		return m.reloadWorkbench()
	}
	return nil
}

func itemTitle(item api.WorkbenchItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.Type
}

func itemReflection(item api.WorkbenchItem) string {
	if item.Data == nil {
		return ""
	}
	reflection, _ := item.Data["reflection"].(string)
	return reflection
}

func (m *model) buildWorkbenchContent() (string, int) {
	cb := &contentBuilder{}
	focus := -1
	stats := m.workbench.stats
	cb.WriteLine(helperStyle.Render(fmt.Sprintf("%d item(s): %d method(s), %d dataset(s), %d note(s) across %d paper(s)",
		stats.TotalItems, stats.MethodsCount, stats.DatasetsCount, stats.NotesCount, stats.PapersCount)))
	var tabs []string
	for _, zone := range workbenchZones {
		label := " " + zoneLabel(zone) + " "
		if zone == m.workbench.zone {
			tabs = append(tabs, currentLineStyle.Render(label))
		} else {
			tabs = append(tabs, helperStyle.Render(label))
		}
	}
	cb.WriteLine(strings.Join(tabs, " "))
	cb.BlankLine()
	if m.workbench.loading {
		cb.WriteLine(helperStyle.Render(fmt.Sprintf("%s Loading…", m.spinner.View())))
		return cb.String(), focus
	}
	items := m.zoneItems()
	if len(items) == 0 {
		cb.WriteLine(helperStyle.Render("Nothing here yet. Capture from the reader with M, D, or m."))
		return cb.String(), focus
	}
	descWrap := m.wrapWidth(8)
	for idx, item := range items {
		if idx == m.workbench.cursor {
			focus = cb.Line()
		}
		cursor := "  "
		if idx == m.workbench.cursor {
			cursor = "▸ "
		}
		row := cursor + itemTitle(item)
		if idx == m.workbench.cursor {
			row = currentLineStyle.Render(row)
		}
		cb.WriteLine(row)
		if item.Description != "" {
			cb.WriteLine(helperStyle.Render(indent.String(wordwrap.String(item.Description, descWrap), 4)))
		}
		if reflection := itemReflection(item); reflection != "" {
			cb.WriteLine(helperStyle.Render(indent.String(wordwrap.String("Reflection: "+reflection, descWrap), 4)))
		}
	}
	return cb.String(), focus
}
