package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asengupta/deepread/internal/api"
)

type libraryState struct {
	items         []api.PaperSummary
	total         int
	cursor        int
	search        string
	categories    []string
	catIdx        int // 0 selects all categories
	selected      map[string]bool
	progress      map[string]api.ProcessingStatus
	pendingDelete string
	loading       bool
}

func isProcessing(status string) bool {
	switch status {
	case api.StatusUploading, api.StatusParsing, api.StatusIndexing:
		return true
	}
	return false
}

func displayTitle(paper api.PaperSummary) string {
	if paper.Title != "" {
		return paper.Title
	}
	return paper.Filename
}

func (m *model) handleLibraryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.library.pendingDelete != "" {
		switch key.String() {
		case "y":
			paperID := m.library.pendingDelete
			m.library.pendingDelete = ""
			m.infoMessage = "Deleting paper…"
			return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindDelete, deletePaperJob(m.config.Client, paperID)))
		default:
			m.library.pendingDelete = ""
			m.infoMessage = "Delete canceled."
			return m, nil
		}
	}
	switch key.String() {
	case "up", "k":
		m.moveLibraryCursor(-1)
	case "down", "j":
		m.moveLibraryCursor(1)
	case "enter":
		return m.openSelectedPaper()
	case "x":
		paper, ok := m.libraryCursorPaper()
		if !ok {
			return m, nil
		}
		if m.library.selected == nil {
			m.library.selected = map[string]bool{}
		}
		if m.library.selected[paper.ID] {
			delete(m.library.selected, paper.ID)
		} else {
			m.library.selected[paper.ID] = true
		}
	case "d":
		paper, ok := m.libraryCursorPaper()
		if !ok {
			return m, nil
		}
		m.library.pendingDelete = paper.ID
		m.infoMessage = fmt.Sprintf("Delete %q? y to confirm, any other key to cancel.", previewText(displayTitle(paper), 40))
	case "/":
		return m.openSearch(stageLibrary)
	case "c":
		if cmd := m.cycleCategory(); cmd != nil {
			return m, cmd
		}
	case "u":
		return m.openUpload()
	case "t":
		paper, ok := m.libraryCursorPaper()
		if !ok {
			return m, nil
		}
		return m.openTags(paper.ID, displayTitle(paper))
	case "A":
		paper, ok := m.libraryCursorPaper()
		if !ok {
			return m, nil
		}
		m.infoMessage = fmt.Sprintf("Requesting re-analysis of %s…", previewText(displayTitle(paper), 40))
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindAnalysis, triggerAnalysisJob(m.config.Client, paper.ID)))
	case "w":
		return m.openWorkbench("")
	case "E":
		return m.openExport()
	case "R":
		return m, m.reloadLibrary()
	case "?":
		m.toggleHelp()
	case "q":
		return m, tea.Quit
	default:
		return m, nil
	}
	return m, nil
}

func (m *model) libraryCursorPaper() (api.PaperSummary, bool) {
	if m.library.cursor < 0 || m.library.cursor >= len(m.library.items) {
		return api.PaperSummary{}, false
	}
	return m.library.items[m.library.cursor], true
}

func (m *model) moveLibraryCursor(delta int) {
	if len(m.library.items) == 0 {
		return
	}
	target := m.library.cursor + delta
	if target < 0 {
		target = 0
	}
	if target >= len(m.library.items) {
		target = len(m.library.items) - 1
	}
	m.library.cursor = target
}

func (m *model) openSelectedPaper() (tea.Model, tea.Cmd) {
	paper, ok := m.libraryCursorPaper()
	if !ok {
		m.infoMessage = "No paper under the cursor."
		return m, nil
	}
	if isProcessing(paper.Status) {
		m.infoMessage = "Still processing. The reader opens once parsing completes."
		return m, nil
	}
	if paper.Status == api.StatusFailed {
		m.infoMessage = "Processing failed for this paper. Delete and re-upload it."
		return m, nil
	}
	m.stage = stageLoading
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Opening %s…", previewText(displayTitle(paper), 48))
	return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindOpen, openPaperJob(m.config.Client, paper.ID)))
}

func (m *model) cycleCategory() tea.Cmd {
	if len(m.library.categories) == 0 {
		m.infoMessage = "No categories reported yet."
		return nil
	}
	m.library.catIdx = (m.library.catIdx + 1) % (len(m.library.categories) + 1)
	if category := m.currentCategory(); category != "" {
		m.infoMessage = fmt.Sprintf("Filtering category %s…", category)
	} else {
		m.infoMessage = "Showing all categories…"
	}
	return m.reloadLibrary()
}

func (m *model) currentCategory() string {
	idx := m.library.catIdx
	if idx <= 0 || idx > len(m.library.categories) {
		return ""
	}
	return m.library.categories[idx-1]
}

// reloadLibrary reruns the listing with the active search and category
// filters. Filtering is server side; the query lands in ListOptions.
func (m *model) reloadLibrary() tea.Cmd {
	m.library.loading = true
	opts := api.ListOptions{
		Search:   m.library.search,
		Category: m.currentCategory(),
	}
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindLibrary, loadLibraryJob(m.config.Client, opts)))
}

func (m *model) handleLibraryLoaded(msg libraryLoadedMsg) tea.Cmd {
	m.library.loading = false
	if m.stage == stageLoading {
		m.stage = stageLibrary
	}
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Press R to retry."
		return nil
	}
	m.errorMessage = ""
	m.library.items = msg.lib.Items
	m.library.total = msg.lib.Total
	if len(msg.categories) > 0 {
		m.library.categories = msg.categories
		if m.library.catIdx > len(msg.categories) {
			m.library.catIdx = 0
		}
	}
	if m.library.cursor >= len(m.library.items) {
		m.library.cursor = len(m.library.items) - 1
	}
	if m.library.cursor < 0 {
		m.library.cursor = 0
	}
	if m.library.search != "" {
		m.infoMessage = fmt.Sprintf("%d paper(s) matching %q.", m.library.total, m.library.search)
	} else {
		m.infoMessage = fmt.Sprintf("%d paper(s) in the library.", m.library.total)
	}
	if m.anyProcessing() {
		if !m.polling {
			m.polling = true
			return statusTick()
		}
		return nil
	}
	m.polling = false
	return nil
}

func (m *model) handlePaperDeleted(msg paperDeletedMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Delete failed."
		return nil
	}
	m.errorMessage = ""
	m.infoMessage = "Paper deleted."
	delete(m.library.selected, msg.paperID)
	return m.reloadLibrary()
}

func (m *model) anyProcessing() bool {
	for _, paper := range m.library.items {
		if isProcessing(paper.Status) {
			return true
		}
	}
	return false
}

func statusTick() tea.Cmd {
	return tea.Tick(statusPollInterval, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func (m *model) handleStatusTick() tea.Cmd {
	if !m.anyProcessing() {
		m.polling = false
		return nil
	}
	return m.jobs.Start(jobKindStatus, activeTasksJob(m.config.Client))
}

// handleStatusReport folds pipeline progress into the listing. Rows that left
// the active set finished one way or the other, so the listing reloads to
// pick up their terminal state.
func (m *model) handleStatusReport(msg statusReportMsg) tea.Cmd {
	if msg.err != nil {
		m.polling = false
		return nil
	}
	active := make(map[string]api.ProcessingStatus, len(msg.tasks))
	for _, task := range msg.tasks {
		active[task.ID] = task
	}
	m.library.progress = active
	vanished := false
	for idx := range m.library.items {
		item := &m.library.items[idx]
		if task, ok := active[item.ID]; ok {
			item.Status = task.Status
		} else if isProcessing(item.Status) {
			vanished = true
		}
	}
	if vanished {
		return tea.Batch(m.reloadLibrary(), statusTick())
	}
	return statusTick()
}

func (m *model) buildLibraryContent() (string, int) {
	cb := &contentBuilder{}
	focus := -1
	if len(m.library.items) == 0 {
		if m.library.search != "" || m.currentCategory() != "" {
			cb.WriteLine(helperStyle.Render("Nothing matches the current filters. Press / to search again or c to change category."))
		} else {
			cb.WriteLine(helperStyle.Render("The library is empty. Press u to upload your first paper."))
		}
		return cb.String(), focus
	}
	titleWrap := m.wrapWidth(24)
	for idx, paper := range m.library.items {
		if idx == m.library.cursor {
			focus = cb.Line()
		}
		cursor := "  "
		if idx == m.library.cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.library.selected[paper.ID] {
			mark = "x"
		}
		row := fmt.Sprintf("%s[%s] %s", cursor, mark, wordwrap.String(displayTitle(paper), titleWrap))
		if idx == m.library.cursor {
			row = currentLineStyle.Render(row)
		}
		cb.WriteLine(row)
		meta := []string{m.statusBadge(paper)}
		if paper.Category != "" {
			meta = append(meta, paper.Category)
		}
		if !paper.CreatedAt.IsZero() {
			meta = append(meta, paper.CreatedAt.Format("2006-01-02"))
		}
		cb.WriteLine(helperStyle.Render("      " + joinMeta(meta)))
	}
	return cb.String(), focus
}

func (m *model) statusBadge(paper api.PaperSummary) string {
	if task, ok := m.library.progress[paper.ID]; ok && isProcessing(task.Status) {
		return fmt.Sprintf("%s %s %d%%", m.spinner.View(), task.Status, task.Progress)
	}
	switch paper.Status {
	case api.StatusCompleted:
		return "✓ ready"
	case api.StatusFailed:
		return "✗ failed"
	case "":
		return "unknown"
	default:
		return fmt.Sprintf("%s %s", m.spinner.View(), paper.Status)
	}
}

func joinMeta(parts []string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out != "" {
			out += "  ·  "
		}
		out += part
	}
	return out
}
