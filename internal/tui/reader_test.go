package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asengupta/deepread/internal/api"
)

const testPaperMarkdown = "# Introduction\nIntro text.\n# Methods\nMethod text."

func openTestPaper(t *testing.T, m *model) {
	t.Helper()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(paperOpenedMsg{
		paperID: "p1",
		detail:  api.PaperDetail{ID: "p1", Title: "Attention Is All You Need", Filename: "attention.pdf"},
		content: api.PaperContent{ID: "p1", Content: testPaperMarkdown},
		analysis: &api.AnalysisResult{
			PaperID: "p1",
			Summary: "A compact survey.",
			Structure: &api.StructureInfo{Sections: []api.StructureSection{
				{Title: "Introduction", Level: 1, StartLine: 1},
				{Title: "Methods", Level: 1, StartLine: 3},
			}},
		},
	})
	if m.stage != stageReader {
		t.Fatalf("stage after open = %v, want %v", m.stage, stageReader)
	}
	m.refreshViewportIfDirty()
}

func TestPaperOpenedEntersReader(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)

	if m.reader.paperID != "p1" {
		t.Fatalf("paperID = %q", m.reader.paperID)
	}
	if m.cursorLine != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursorLine)
	}
	if m.lineCount == 0 {
		t.Fatalf("viewport lines missing")
	}
	if !strings.Contains(m.infoMessage, "Attention") {
		t.Fatalf("info = %q", m.infoMessage)
	}
}

func TestPaperOpenedErrorReturnsToLibrary(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m)
	m.stage = stageLoading

	m.Update(paperOpenedMsg{paperID: "p1", err: errors.New("not found")})
	if m.stage != stageLibrary {
		t.Fatalf("stage = %v, want %v", m.stage, stageLibrary)
	}
	if m.errorMessage == "" {
		t.Fatalf("open error not surfaced")
	}
}

func TestPaperOpenedFallsBackToDetailMarkdown(t *testing.T) {
	m := newTestModel(t)
	m.Update(paperOpenedMsg{
		paperID: "p1",
		detail:  api.PaperDetail{ID: "p1", Title: "T", MarkdownContent: "fallback body"},
		content: api.PaperContent{ID: "p1", Content: "   "},
	})
	if m.reader.content != "fallback body" {
		t.Fatalf("content = %q, want the detail fallback", m.reader.content)
	}
}

func TestReaderOutlineAnchors(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)

	want := []string{"Analysis Summary", "Introduction", "Methods"}
	got := m.availableSections()
	if len(got) != len(want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("section %d = %q, want %q", i, got[i], want[i])
		}
	}

	if line := m.sectionAnchors["Introduction"]; line != 3 {
		t.Fatalf("Introduction anchor = %d, want 3", line)
	}
	if line := m.sectionAnchors["Methods"]; line != 5 {
		t.Fatalf("Methods anchor = %d, want 5", line)
	}
}

func TestJumpBetweenSections(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)

	m.jumpToRelativeSection(1)
	if m.cursorLine != m.sectionAnchors["Introduction"] {
		t.Fatalf("cursor = %d, want the Introduction anchor", m.cursorLine)
	}

	m.jumpToRelativeSection(1)
	if m.cursorLine != m.sectionAnchors["Methods"] {
		t.Fatalf("cursor = %d, want the Methods anchor", m.cursorLine)
	}

	m.jumpToRelativeSection(1)
	if !strings.Contains(m.infoMessage, "last section") {
		t.Fatalf("info = %q", m.infoMessage)
	}

	m.jumpToRelativeSection(-1)
	if m.cursorLine != m.sectionAnchors["Introduction"] {
		t.Fatalf("cursor = %d after jumping back", m.cursorLine)
	}
}

func TestHighlightSelectionTracksCursor(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.jumpToSection("Introduction")

	m.Update(keyRune('v'))
	if m.mode != modeHighlight || !m.selectionActive {
		t.Fatalf("v should enter highlight mode")
	}

	m.Update(keyRune('j'))
	start, end, ok := m.selectionRange()
	if !ok || start != 3 || end != 4 {
		t.Fatalf("selection = %d..%d ok=%v, want 3..4", start, end, ok)
	}

	if got := m.selectedText(); got != "# Introduction\nIntro text." {
		t.Fatalf("selected text = %q", got)
	}
	if got := m.selectionLocation(); got != "lines 4-5" {
		t.Fatalf("location = %q, want lines 4-5", got)
	}
}

func TestSelectionRangeSwapsReversedBounds(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.jumpToSection("Methods")

	m.Update(keyRune('v'))
	m.Update(keyRune('k'))
	m.Update(keyRune('k'))

	start, end, ok := m.selectionRange()
	if !ok || start != 3 || end != 5 {
		t.Fatalf("selection = %d..%d ok=%v, want 3..5", start, end, ok)
	}
}

func TestHighlightModeNeedsContent(t *testing.T) {
	m := newTestModel(t)
	m.stage = stageReader
	m.reader.paperID = "p1"

	m.toggleHighlightMode()
	if m.mode == modeHighlight {
		t.Fatalf("highlight mode should not start on an empty paper")
	}
}

func TestApplySearchCyclesMatches(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)

	m.applySearch("text")
	if len(m.searchMatches) != 2 {
		t.Fatalf("matches = %d, want 2", len(m.searchMatches))
	}
	if m.searchMatchIdx != 0 {
		t.Fatalf("first match index = %d", m.searchMatchIdx)
	}
	if got := m.searchStatusLine(); !strings.Contains(got, "match 1/2") {
		t.Fatalf("status line = %q", got)
	}

	m.advanceSearch(1)
	if m.searchMatchIdx != 1 {
		t.Fatalf("index after n = %d, want 1", m.searchMatchIdx)
	}
	m.advanceSearch(1)
	if m.searchMatchIdx != 0 {
		t.Fatalf("index should wrap to 0, got %d", m.searchMatchIdx)
	}
	m.advanceSearch(-1)
	if m.searchMatchIdx != 1 {
		t.Fatalf("index after N = %d, want 1", m.searchMatchIdx)
	}

	m.applySearch("")
	if m.searchQuery != "" || m.searchMatches != nil {
		t.Fatalf("clearing the search left state behind")
	}
}

func TestCaptureSelectionRequiresHighlight(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)

	_, cmd := m.Update(keyRune('m'))
	if cmd != nil {
		t.Fatalf("capture without a selection should not start a job")
	}
	if !strings.Contains(m.infoMessage, "Highlight") {
		t.Fatalf("info = %q", m.infoMessage)
	}
}

func TestCaptureSelectionStartsTheJobAndDropsHighlight(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.jumpToSection("Introduction")
	m.Update(keyRune('v'))
	m.Update(keyRune('j'))

	_, cmd := m.Update(keyRune('m'))
	if cmd == nil {
		t.Fatalf("capture should start a job")
	}
	if m.mode != modeNormal || m.selectionActive {
		t.Fatalf("capture should leave highlight mode")
	}
}

func TestLeaveReaderResetsState(t *testing.T) {
	m := newTestModel(t)
	openTestPaper(t, m)
	m.applySearch("text")
	m.Update(keyRune('p'))

	m.leaveReader()
	if m.stage != stageLibrary {
		t.Fatalf("stage = %v, want %v", m.stage, stageLibrary)
	}
	if m.reader.paperID != "" {
		t.Fatalf("reader state not cleared")
	}
	if m.searchQuery != "" {
		t.Fatalf("search survived leaving the reader")
	}
	if m.planVisible {
		t.Fatalf("reading plan survived leaving the reader")
	}
}
