package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asengupta/deepread/internal/guide"
)

func (m *model) View() string {
	switch m.stage {
	case stageLibrary:
		return m.viewLibrary()
	case stageLoading:
		return m.viewLoading()
	case stageReader:
		return m.viewReader()
	case stageActions:
		return m.viewActions()
	case stageResult:
		return m.viewResult()
	case stageChat:
		return m.viewChat()
	case stageTags:
		return m.viewTags()
	case stageWorkbench:
		return m.viewWorkbench()
	case stageSearch:
		return m.viewSearch()
	case stageUpload:
		return m.viewUpload()
	case stageExport:
		return m.viewExport()
	default:
		return ""
	}
}

func (m *model) viewLibrary() string {
	content, focus := m.buildLibraryContent()
	return m.framePane(content, focus)
}

func (m *model) viewLoading() string {
	body := fmt.Sprintf("%s %s", m.spinner.View(), m.infoMessage)
	return m.frameWithHero(body)
}

func (m *model) viewReader() string {
	if m.reader.paperID == "" {
		return m.viewLoading()
	}
	m.refreshViewportIfDirty()
	parts := []string{m.heroView()}
	if meter := m.sessionMeterView(); meter != "" {
		parts = append(parts, meter)
	}
	parts = append(parts, m.viewport.View())
	if status := m.searchStatusLine(); status != "" {
		parts = append(parts, helperStyle.Render(status))
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if legend := m.keyLegendView(); legend != "" {
		parts = append(parts, legend)
	}
	if m.planVisible {
		parts = append(parts, m.planView())
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) viewActions() string {
	if m.popup == nil {
		return m.viewReader()
	}
	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render("Read this selection"))
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render(previewText(m.popup.selection, 120)))
	b.WriteRune('\n')
	b.WriteRune('\n')
	for idx, action := range m.popup.actions {
		cursor := "  "
		if idx == m.popup.cursor {
			cursor = "▸ "
		}
		row := fmt.Sprintf("%s%s  %s", cursor, action.Icon, action.Label)
		if idx == m.popup.cursor {
			row = currentLineStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteRune('\n')
	}
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Enter runs the highlighted action, Esc keeps reading."))
	return m.frameWithHero(helpBoxStyle.Render(b.String()))
}

func (m *model) viewResult() string {
	m.pane.SetContent(m.buildResultContent())
	if m.result != nil && m.result.running {
		m.pane.GotoBottom()
	}
	parts := []string{m.heroView()}
	if meter := m.sessionMeterView(); meter != "" {
		parts = append(parts, meter)
	}
	parts = append(parts, m.pane.View())
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if legend := m.keyLegendView(); legend != "" {
		parts = append(parts, legend)
	}
	return joinNonEmpty(parts)
}

func (m *model) viewChat() string {
	m.pane.SetContent(m.buildChatContent())
	if m.stream != nil && m.stream.target == streamTargetChat {
		m.pane.GotoBottom()
	}
	parts := []string{m.heroView()}
	if meter := m.sessionMeterView(); meter != "" {
		parts = append(parts, meter)
	}
	parts = append(parts, m.pane.View())
	parts = append(parts, m.composer.View())
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if legend := m.keyLegendView(); legend != "" {
		parts = append(parts, legend)
	}
	return joinNonEmpty(parts)
}

func (m *model) viewTags() string {
	content, focus := m.buildTagsContent()
	if m.mode == modeInsert {
		return m.framePane(content, focus, m.composer.View())
	}
	return m.framePane(content, focus)
}

func (m *model) viewWorkbench() string {
	content, focus := m.buildWorkbenchContent()
	if m.mode == modeInsert {
		return m.framePane(content, focus, m.composer.View())
	}
	return m.framePane(content, focus)
}

func (m *model) viewSearch() string {
	var b strings.Builder
	if m.searchReturn == stageLibrary {
		b.WriteString(sectionHeaderStyle.Render("Search the Library"))
	} else {
		b.WriteString(sectionHeaderStyle.Render("Search this Paper"))
	}
	b.WriteRune('\n')
	b.WriteString(m.searchInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Press Enter to apply, Esc to cancel."))
	return m.frameWithHero(b.String())
}

func (m *model) viewUpload() string {
	b := strings.Builder{}
	b.WriteString(sectionHeaderStyle.Render("Upload a Paper"))
	b.WriteRune('\n')
	b.WriteString(m.composer.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Press Enter to upload the PDF, Esc to cancel."))
	if m.errorMessage != "" {
		b.WriteRune('\n')
		b.WriteString(errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		b.WriteRune('\n')
		b.WriteString(helperStyle.Render(m.infoMessage))
	}
	return m.frameWithHero(b.String())
}

func (m *model) viewExport() string {
	content, focus := m.buildExportContent()
	return m.framePane(content, focus)
}

// framePane mounts list-style content into the shared pane and frames it with
// the hero, status bar, and message lines. Extras land between the pane and
// the messages.
func (m *model) framePane(content string, focus int, extras ...string) string {
	m.pane.SetContent(content)
	if focus >= 0 {
		m.ensurePaneVisible(focus)
	}
	parts := []string{m.heroView()}
	if meter := m.sessionMeterView(); meter != "" {
		parts = append(parts, meter)
	}
	parts = append(parts, m.pane.View())
	parts = append(parts, extras...)
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if legend := m.keyLegendView(); legend != "" {
		parts = append(parts, legend)
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) ensurePaneVisible(line int) {
	if line < 0 {
		return
	}
	if line < m.pane.YOffset {
		m.pane.SetYOffset(line)
		return
	}
	lowerBound := m.pane.YOffset + m.pane.Height - 1
	if line > lowerBound {
		target := line - m.pane.Height + 1
		if target < 0 {
			target = 0
		}
		m.pane.SetYOffset(target)
	}
}

func (m *model) heroView() string {
	logo := renderLogo()
	if m.reader.paperID == "" {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			logo,
			taglineStyle.Render(heroTagline),
		)
	}

	title := heroTitleStyle.Render(wordwrap.String(m.readerTitle(), 48))
	meta := []string{helperStyle.Render("File: " + m.reader.detail.Filename)}
	if m.reader.detail.Category != "" {
		meta = append(meta, helperStyle.Render("Category: "+m.reader.detail.Category))
	}
	if !m.reader.detail.CreatedAt.IsZero() {
		meta = append(meta, helperStyle.Render("Added: "+m.reader.detail.CreatedAt.Format("2006-01-02")))
	}
	content := strings.Join(append([]string{title}, meta...), "\n")
	summary := heroBoxStyle.Render(content)
	panel := lipgloss.JoinHorizontal(lipgloss.Top, logo, heroSummaryStyle.Render(summary))
	return lipgloss.JoinVertical(lipgloss.Left, panel, taglineStyle.Render(heroTagline))
}

func (m *model) frameWithHero(body string) string {
	return joinNonEmpty([]string{m.heroView(), body})
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func (m *model) modeLabel() string {
	switch m.mode {
	case modeInsert:
		return "INSERT"
	case modeHighlight:
		return "HIGHLIGHT"
	default:
		return "NORMAL"
	}
}

func (m *model) sessionMeterView() string {
	stats := []string{
		fmt.Sprintf("Mode %s", m.modeLabel()),
		fmt.Sprintf("Papers %d", m.library.total),
	}
	if marked := len(m.library.selected); marked > 0 {
		stats = append(stats, fmt.Sprintf("Marked %d", marked))
	}
	if m.reader.paperID != "" && len(m.chat.turns) > 0 {
		stats = append(stats, fmt.Sprintf("Chat %d", len(m.chat.turns)))
	}
	if m.stream != nil {
		stats = append(stats, "Streaming…")
	}
	stats = append(stats, m.jobStatusBadges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	var hints []keyHint
	switch m.stage {
	case stageLibrary:
		hints = []keyHint{
			{"↑/↓", "Move"},
			{"enter", "Open paper"},
			{"x", "Mark"},
			{"d", "Delete"},
			{"/", "Search"},
			{"c", "Category"},
			{"u", "Upload"},
			{"t", "Tags"},
			{"A", "Analyze"},
			{"w", "Workbench"},
			{"E", "Export"},
			{"?", "Help"},
		}
	case stageReader:
		hints = []keyHint{
			{"↑/↓", "Move cursor"},
			{"v", "Highlight"},
			{"enter", "Actions"},
			{"M/D/m", "Capture"},
			{"c", "Chat"},
			{"[/]", "Sections"},
			{"/", "Search"},
			{"n/N", "Next match"},
			{"g/G", "Top/bottom"},
			{"p", "Plan"},
			{"t", "Tags"},
			{"w", "Workbench"},
			{"?", "Help"},
		}
	case stageResult:
		hints = []keyHint{
			{"↑/↓", "Scroll"},
			{"c", "Continue in chat"},
			{"esc", "Back to reader"},
		}
	case stageChat:
		hints = []keyHint{
			{"enter", "Send"},
			{"ctrl+r", "Reset chat"},
			{"pgup/pgdn", "Scroll"},
			{"esc", "Back"},
		}
	case stageTags:
		hints = []keyHint{
			{"space", "Toggle"},
			{"a", "Add tag"},
			{"R", "Classify"},
			{"enter", "Save"},
			{"esc", "Back"},
		}
	case stageWorkbench:
		hints = []keyHint{
			{"tab", "Switch zone"},
			{"d", "Delete item"},
			{"r", "Reflection"},
			{"R", "Reload"},
			{"esc", "Back"},
		}
	case stageExport:
		hints = []keyHint{
			{"↑/↓", "Format"},
			{"enter", "Export"},
			{"esc", "Back"},
		}
	default:
		return ""
	}
	rows := []string{sectionHeaderStyle.Render("Navigation Cheatsheet")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) planView() string {
	steps := guide.Build(guide.Metadata{
		Title:    m.readerTitle(),
		Sections: len(m.sectionOrder),
	})
	wrap := m.wrapWidth(6)
	lines := make([]string, 0, len(steps)*2+1)
	lines = append(lines, sectionHeaderStyle.Render("Reading Plan"))
	for _, step := range steps {
		lines = append(lines, keyDescStyle.Render(step.Title))
		lines = append(lines, helperStyle.Render(wordwrap.String(step.Description, wrap)))
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Reading Flow"),
		helperStyle.Render("• open a paper with Enter, press v to start a highlight, move to grow it, then Enter picks how to read it."),
		helperStyle.Render("• the action list is ranked: selections that look like math put Explain Formula first."),
		helperStyle.Render("• M files the selection as a method card, D scans it for datasets and code, m saves it as a note."),
		helperStyle.Render("• c chats about the paper; answers stream in and Ctrl+R starts the transcript over."),
		helperStyle.Render("• t edits tags and R inside asks the classifier; w opens the workbench, E exports citations."),
		helperStyle.Render("• [ and ] jump between sections once analysis built an outline; / searches, n/N cycle matches."),
		helperStyle.Render("• p lays out a three-pass reading plan for the open paper."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = 80
	}
	rendererOpts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if os.Getenv("NO_COLOR") != "" {
		rendererOpts = append(rendererOpts, glamour.WithStylePath("notty"))
	} else {
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return nil
	}
	return renderer
}

// renderMarkdown falls back to the raw text whenever glamour cannot render,
// so a malformed answer still shows up.
func (m *model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width += 1 // allow horizontal shadow shift
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	// draw shadow first (offset down/right)
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}

	// draw face on top
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

var (
	sectionHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	searchHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190"))
	searchCurrentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229"))

	heroAccentColor        = lipgloss.Color("#00b4d8")
	heroInkColor           = lipgloss.Color("#001219")
	heroTextColor          = lipgloss.Color("#e0fbfc")
	heroSecondaryTextColor = lipgloss.Color("#94d2bd")

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	heroBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Background(heroInkColor).Padding(1, 2)
	heroSummaryStyle   = lipgloss.NewStyle().PaddingLeft(2)
	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#0096c7")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	selectionLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))
	chatUserStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166"))
	chatAssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroInkColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#000a10"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"██████╗   ███████╗  ███████╗  ██████╗   ██████╗   ███████╗   █████╗   ██████╗ ",
		"██╔══██╗  ██╔════╝  ██╔════╝  ██╔══██╗  ██╔══██╗  ██╔════╝  ██╔══██╗  ██╔══██╗",
		"██║  ██║  █████╗    █████╗    ██████╔╝  ██████╔╝  █████╗    ███████║  ██║  ██║",
		"██║  ██║  ██╔══╝    ██╔══╝    ██╔═══╝   ██╔══██╗  ██╔══╝    ██╔══██║  ██║  ██║",
		"██████╔╝  ███████╗  ███████╗  ██║       ██║  ██║  ███████╗  ██║  ██║  ██████╔╝",
		"╚═════╝   ╚══════╝  ╚══════╝  ╚═╝       ╚═╝  ╚═╝  ╚══════╝  ╚═╝  ╚═╝  ╚═════╝ ",
	}
)
