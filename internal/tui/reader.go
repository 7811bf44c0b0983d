package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asengupta/deepread/internal/api"
)

type readerState struct {
	paperID  string
	detail   api.PaperDetail
	content  string
	analysis *api.AnalysisResult
}

func (m *model) readerTitle() string {
	if m.reader.detail.Title != "" {
		return m.reader.detail.Title
	}
	return m.reader.detail.Filename
}

func (m *model) handlePaperOpened(msg paperOpenedMsg) tea.Cmd {
	if msg.err != nil {
		m.stage = stageLibrary
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Could not open the paper."
		return nil
	}
	content := msg.content.Content
	if strings.TrimSpace(content) == "" {
		content = msg.detail.MarkdownContent
	}
	m.reader = readerState{
		paperID:  msg.paperID,
		detail:   msg.detail,
		content:  content,
		analysis: msg.analysis,
	}
	m.stage = stageReader
	m.mode = modeNormal
	m.cursorLine = 0
	m.selectionActive = false
	m.viewport.SetYOffset(0)
	m.clearSearch()
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Loaded %s. v highlights, Enter analyzes the selection.", previewText(m.readerTitle(), 48))
	m.markViewportDirty()
	return nil
}

func (m *model) handleReaderKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	handled := true
	switch key.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "v":
		m.toggleHighlightMode()
	case "enter", "i":
		return m.openActionPopup()
	case "]":
		m.jumpToRelativeSection(1)
	case "[":
		m.jumpToRelativeSection(-1)
	case "g":
		m.scrollToTop()
	case "G":
		m.scrollToBottom()
	case "/":
		return m.openSearch(stageReader)
	case "n":
		m.advanceSearch(1)
	case "N":
		m.advanceSearch(-1)
	case "M":
		return m.captureSelection(captureMethod)
	case "D":
		return m.captureSelection(captureAsset)
	case "m":
		return m.captureSelection(captureNote)
	case "c":
		return m.openChat()
	case "t":
		return m.openTags(m.reader.paperID, m.readerTitle())
	case "w":
		return m.openWorkbench(m.reader.paperID)
	case "A":
		m.infoMessage = "Requesting re-analysis…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindAnalysis, triggerAnalysisJob(m.config.Client, m.reader.paperID)))
	case "p":
		m.togglePlan()
	case "?":
		m.toggleHelp()
	default:
		handled = false
	}
	if handled {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

func (m *model) leaveReader() {
	m.cancelStream()
	m.reader = readerState{}
	m.stage = stageLibrary
	m.mode = modeNormal
	m.cursorLine = 0
	m.selectionActive = false
	m.planVisible = false
	m.viewport.SetContent("")
	m.clearSearch()
	m.infoMessage = "Back to the library."
	m.markViewportDirty()
}

func (m *model) handleAnalysisStarted(msg analysisStartedMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Re-analysis request failed."
		return nil
	}
	m.errorMessage = ""
	if msg.start.Message != "" {
		m.infoMessage = msg.start.Message
	} else {
		m.infoMessage = "Analysis running in the background."
	}
	return nil
}

// sectionKey derives a unique anchor key from a heading title; the key doubles
// as the label shown when jumping.
func sectionKey(title string, used map[string]bool) string {
	key := strings.TrimSpace(title)
	if key == "" {
		key = "section"
	}
	base := key
	for i := 2; used[key]; i++ {
		key = fmt.Sprintf("%s (%d)", base, i)
	}
	used[key] = true
	return key
}

func (m *model) buildReaderContent() displayView {
	cb := &contentBuilder{}
	anchors := map[string]int{}
	var order []string
	wrap := m.wrapWidth(0)

	if m.reader.analysis != nil && strings.TrimSpace(m.reader.analysis.Summary) != "" {
		const key = "Analysis Summary"
		anchors[key] = cb.Line()
		order = append(order, key)
		cb.WriteLine(sectionHeaderStyle.Render(key))
		cb.WriteLine(wordwrap.String(m.reader.analysis.Summary, wrap))
		cb.BlankLine()
	}

	// Outline anchors point at the markdown's own heading lines; start_line
	// is 1-based in the backend payload.
	marks := map[int]string{}
	if m.reader.analysis != nil && m.reader.analysis.Structure != nil {
		used := map[string]bool{}
		for _, section := range m.reader.analysis.Structure.Sections {
			key := sectionKey(section.Title, used)
			line := section.StartLine - 1
			if line < 0 {
				line = 0
			}
			if _, taken := marks[line]; taken {
				continue
			}
			marks[line] = key
			order = append(order, key)
		}
	}

	for idx, line := range strings.Split(m.reader.content, "\n") {
		if key, ok := marks[idx]; ok {
			anchors[key] = cb.Line()
		}
		cb.WriteLine(wordwrap.String(line, wrap))
	}

	return displayView{content: cb.String(), anchors: anchors, sections: order}
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	prevYOffset := m.viewport.YOffset
	if m.reader.paperID == "" {
		m.viewport.SetContent("")
		m.sectionAnchors = map[string]int{}
		m.sectionOrder = nil
		m.viewportLines = nil
		m.lineCount = 0
		return
	}
	view := m.buildReaderContent()
	m.sectionAnchors = view.anchors
	m.sectionOrder = view.sections
	m.viewportLines = strings.Split(view.content, "\n")
	m.lineCount = len(m.viewportLines)
	if m.cursorLine >= m.lineCount {
		m.cursorLine = m.lineCount - 1
	}
	if m.cursorLine < 0 {
		m.cursorLine = 0
	}

	if m.searchQuery != "" {
		m.searchMatches = findMatches(m.viewportLines, m.searchQuery)
		if len(m.searchMatches) == 0 {
			m.searchMatchIdx = -1
		} else if m.searchMatchIdx < 0 || m.searchMatchIdx >= len(m.searchMatches) {
			m.searchMatchIdx = 0
		}
	} else {
		m.searchMatches = nil
		m.searchMatchIdx = -1
	}
	start, end, hasSelection := m.selectionRange()
	m.viewport.SetContent(decorateLines(m.viewportLines, m.searchMatches, m.searchMatchIdx, m.cursorLine, start, end, hasSelection))
	m.viewport.SetYOffset(m.clampYOffset(prevYOffset))
	if m.searchQuery != "" && len(m.searchMatches) > 0 && m.searchMatchIdx >= 0 {
		m.scrollToCurrentMatch()
	}
}

func (m *model) ensureCursorVisible() {
	if m.lineCount == 0 {
		return
	}
	line := m.cursorLine
	if line < 0 {
		line = 0
	}
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
		return
	}
	lowerBound := m.viewport.YOffset + m.viewport.Height - 1
	if line > lowerBound {
		target := line - m.viewport.Height + 1
		if target < 0 {
			target = 0
		}
		m.viewport.SetYOffset(target)
	}
}

func (m *model) moveCursor(delta int) {
	if m.lineCount == 0 {
		return
	}
	target := m.cursorLine + delta
	if target < 0 {
		target = 0
	}
	if target >= m.lineCount {
		target = m.lineCount - 1
	}
	if target == m.cursorLine {
		if m.mode != modeHighlight {
			m.selectionActive = false
		}
		return
	}
	m.cursorLine = target
	if m.mode != modeHighlight {
		m.selectionActive = false
	}
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.ensureCursorVisible()
}

func (m *model) toggleHighlightMode() {
	switch m.mode {
	case modeHighlight:
		m.mode = modeNormal
		m.selectionActive = false
		m.infoMessage = "Highlight mode disabled."
	default:
		if m.lineCount == 0 {
			return
		}
		m.mode = modeHighlight
		m.selectionAnchor = m.cursorLine
		m.selectionActive = true
		m.infoMessage = "Highlight mode. Move to expand, Enter to analyze, M/D/m to capture."
	}
	m.markViewportDirty()
	m.refreshViewportIfDirty()
}

func (m *model) selectionRange() (int, int, bool) {
	if !m.selectionActive || m.mode != modeHighlight || m.lineCount == 0 {
		return 0, 0, false
	}
	start, end := m.selectionAnchor, m.cursorLine
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end >= m.lineCount {
		end = m.lineCount - 1
	}
	return start, end, true
}

func (m *model) selectedText() string {
	start, end, ok := m.selectionRange()
	if !ok || len(m.viewportLines) == 0 {
		return ""
	}
	if end >= len(m.viewportLines) {
		end = len(m.viewportLines) - 1
	}
	var lines []string
	for i := start; i <= end; i++ {
		lines = append(lines, m.viewportLines[i])
	}
	return strings.TrimSpace(stripANSI(strings.Join(lines, "\n")))
}

func (m *model) selectionLocation() string {
	start, end, ok := m.selectionRange()
	if !ok {
		return ""
	}
	return fmt.Sprintf("lines %d-%d", start+1, end+1)
}

func (m *model) captureSelection(kind captureKind) (tea.Model, tea.Cmd) {
	text := m.selectedText()
	if text == "" {
		m.infoMessage = "Highlight some text first: v, then move."
		return m, nil
	}
	location := m.selectionLocation()
	m.mode = modeNormal
	m.selectionActive = false
	m.markViewportDirty()
	switch kind {
	case captureMethod:
		req := api.AnalyzeTextRequest{Text: text, PaperID: m.reader.paperID, PaperTitle: m.readerTitle(), Location: location}
		m.infoMessage = "Distilling the selection into a method card…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindCapture, captureMethodJob(m.config.Client, req)))
	case captureAsset:
		req := api.AnalyzeTextRequest{Text: text, PaperID: m.reader.paperID, PaperTitle: m.readerTitle(), Location: location}
		m.infoMessage = "Scanning the selection for datasets and code…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindCapture, captureAssetJob(m.config.Client, req)))
	default:
		req := api.CreateNoteRequest{Text: text, PaperID: m.reader.paperID, PaperTitle: m.readerTitle(), Location: location}
		m.infoMessage = "Saving the selection as a note…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindCapture, captureNoteJob(m.config.Client, req)))
	}
}

func (m *model) jumpToRelativeSection(delta int) {
	anchors := m.availableSections()
	if len(anchors) == 0 {
		m.infoMessage = "No outline for this paper yet. Press A to analyze it."
		return
	}
	currentLine := m.cursorLine
	if delta > 0 {
		for _, anchor := range anchors {
			if m.sectionAnchors[anchor] > currentLine {
				m.jumpToSection(anchor)
				return
			}
		}
		m.infoMessage = "Already at the last section."
		return
	}
	for i := len(anchors) - 1; i >= 0; i-- {
		if m.sectionAnchors[anchors[i]] < currentLine {
			m.jumpToSection(anchors[i])
			return
		}
	}
	m.infoMessage = "Already at the first section."
}

func (m *model) availableSections() []string {
	if len(m.sectionAnchors) == 0 {
		return nil
	}
	var ordered []string
	for _, anchor := range m.sectionOrder {
		if _, ok := m.sectionAnchors[anchor]; ok {
			ordered = append(ordered, anchor)
		}
	}
	return ordered
}

func (m *model) jumpToSection(anchor string) {
	line, ok := m.sectionAnchors[anchor]
	if !ok {
		m.infoMessage = "Section unavailable."
		return
	}
	if line < 0 {
		line = 0
	}
	m.viewport.SetYOffset(line)
	m.cursorLine = line
	if m.mode != modeHighlight {
		m.selectionActive = false
	}
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	m.infoMessage = fmt.Sprintf("Jumped to %s.", anchor)
}

func (m *model) scrollToTop() {
	m.viewport.SetYOffset(0)
	if m.lineCount > 0 {
		m.cursorLine = 0
		if m.mode != modeHighlight {
			m.selectionActive = false
		}
		m.markViewportDirty()
		m.refreshViewportIfDirty()
	}
	m.infoMessage = "Jumped to top."
}

func (m *model) scrollToBottom() {
	target := m.lineCount - m.viewport.Height
	if target < 0 {
		target = 0
	}
	m.viewport.SetYOffset(target)
	if m.lineCount > 0 {
		m.cursorLine = m.lineCount - 1
		if m.mode != modeHighlight {
			m.selectionActive = false
		}
		m.markViewportDirty()
		m.refreshViewportIfDirty()
	}
	m.infoMessage = "Jumped to bottom."
}

func (m *model) applySearch(query string) {
	query = strings.TrimSpace(query)
	m.searchInput.Blur()
	m.searchQuery = query
	if query == "" {
		m.searchMatches = nil
		m.searchMatchIdx = -1
		m.searchInput.SetValue("")
	} else {
		m.searchMatchIdx = 0
	}
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	if query == "" {
		m.infoMessage = "Cleared search."
	} else if len(m.searchMatches) == 0 {
		m.infoMessage = fmt.Sprintf("No matches for %q.", query)
	} else {
		m.infoMessage = fmt.Sprintf("Match 1/%d for %q. n/N cycles.", len(m.searchMatches), query)
	}
}

func (m *model) clearSearch() {
	m.searchQuery = ""
	m.searchMatches = nil
	m.searchMatchIdx = -1
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.markViewportDirty()
}

func (m *model) advanceSearch(delta int) {
	if m.searchQuery == "" {
		m.infoMessage = "Start a search with / first."
		return
	}
	if len(m.searchMatches) == 0 {
		m.infoMessage = fmt.Sprintf("No matches for %q.", m.searchQuery)
		return
	}
	count := len(m.searchMatches)
	m.searchMatchIdx = (m.searchMatchIdx + delta) % count
	if m.searchMatchIdx < 0 {
		m.searchMatchIdx += count
	}
	m.infoMessage = fmt.Sprintf("Match %d/%d for %q.", m.searchMatchIdx+1, count, m.searchQuery)
	m.markViewportDirty()
	m.refreshViewportIfDirty()
}

func (m *model) scrollToCurrentMatch() {
	if len(m.searchMatches) == 0 || m.searchMatchIdx < 0 || m.searchMatchIdx >= len(m.searchMatches) {
		return
	}
	match := m.searchMatches[m.searchMatchIdx]
	target := match.line - 1
	if target < 0 {
		target = 0
	}
	m.viewport.SetYOffset(target)
}

func (m *model) searchStatusLine() string {
	if m.searchQuery == "" {
		return ""
	}
	if len(m.searchMatches) == 0 {
		return fmt.Sprintf("Search %q — no matches", m.searchQuery)
	}
	return fmt.Sprintf("Search %q — match %d/%d", m.searchQuery, m.searchMatchIdx+1, len(m.searchMatches))
}

func (m *model) clampYOffset(offset int) int {
	maxOffset := m.lineCount - m.viewport.Height
	if m.viewport.Height <= 0 {
		maxOffset = m.lineCount - 1
	}
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}
