package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asengupta/deepread/internal/api"
)

type exportState struct {
	paperIDs []string
	formats  []string
	cursor   int
	running  bool
}

func formatLabel(format string) string {
	switch format {
	case api.FormatBibTeX:
		return "BibTeX (.bib)"
	case api.FormatRIS:
		return "RIS (.ris)"
	default:
		return "Plain text (.txt)"
	}
}

// openExport gathers the marked papers, or falls back to the one under the
// cursor when nothing is marked.
func (m *model) openExport() (tea.Model, tea.Cmd) {
	var ids []string
	for _, item := range m.library.items {
		if m.library.selected[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		paper, ok := m.libraryCursorPaper()
		if !ok {
			m.infoMessage = "Nothing to export. Mark papers with x first."
			return m, nil
		}
		ids = []string{paper.ID}
	}
	m.export = exportState{
		paperIDs: ids,
		formats:  []string{api.FormatBibTeX, api.FormatRIS, api.FormatPlain},
	}
	m.stage = stageExport
	m.mode = modeNormal
	m.infoMessage = fmt.Sprintf("Exporting %d paper(s). Pick a format, Enter writes the file.", len(ids))
	return m, nil
}

func (m *model) closeExport() {
	m.stage = stageLibrary
	m.infoMessage = "Export canceled."
}

func (m *model) handleExportKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.export.cursor > 0 {
			m.export.cursor--
		}
	case "down", "j":
		if m.export.cursor < len(m.export.formats)-1 {
			m.export.cursor++
		}
	case "enter":
		if m.export.running {
			m.infoMessage = "Export already running."
			return m, nil
		}
		format := m.export.formats[m.export.cursor]
		m.export.running = true
		m.infoMessage = fmt.Sprintf("Writing %s…", formatLabel(format))
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindExport,
			exportCitationsJob(m.config.Client, m.export.paperIDs, format, m.config.ExportDir)))
	case "?":
		m.toggleHelp()
	}
	return m, nil
}

func (m *model) handleExportResult(msg exportResultMsg) tea.Cmd {
	m.export.running = false
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Export failed."
		return nil
	}
	m.errorMessage = ""
	m.stage = stageLibrary
	m.infoMessage = fmt.Sprintf("Exported %d citation(s) to %s.", msg.count, msg.path)
	return nil
}

func (m *model) buildExportContent() (string, int) {
	cb := &contentBuilder{}
	focus := -1
	cb.WriteLine(helperStyle.Render(fmt.Sprintf("%d paper(s) selected for export.", len(m.export.paperIDs))))
	cb.BlankLine()
	for idx, format := range m.export.formats {
		if idx == m.export.cursor {
			focus = cb.Line()
		}
		cursor := "  "
		if idx == m.export.cursor {
			cursor = "▸ "
		}
		row := cursor + formatLabel(format)
		if idx == m.export.cursor {
			row = currentLineStyle.Render(row)
		}
		cb.WriteLine(row)
	}
	if m.export.running {
		cb.BlankLine()
		cb.WriteLine(helperStyle.Render(fmt.Sprintf("%s Writing the export…", m.spinner.View())))
	}
	return cb.String(), focus
}
