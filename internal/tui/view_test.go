package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/assist"
)

// Every surface must render from its usual state without panicking; the
// assertions pin one marker per surface so a broken frame fails loudly.
func TestEveryStageRenders(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, m *model)
		want  string
	}{
		{
			name:  "loading",
			setup: func(t *testing.T, m *model) {},
			want:  "Loading",
		},
		{
			name: "library",
			setup: func(t *testing.T, m *model) {
				seedLibrary(m, api.PaperSummary{ID: "p1", Title: "Attention Is All You Need", Status: api.StatusCompleted})
			},
			want: "Attention Is All You Need",
		},
		{
			name: "library empty",
			setup: func(t *testing.T, m *model) {
				seedLibrary(m)
			},
			want: "upload your first paper",
		},
		{
			name: "reader",
			setup: func(t *testing.T, m *model) {
				openTestPaper(t, m)
			},
			want: "Intro text.",
		},
		{
			name: "actions",
			setup: func(t *testing.T, m *model) {
				openTestPaper(t, m)
				m.stage = stageActions
				m.popup = &actionPopup{actions: assist.RankActions("E = mc^2"), selection: "E = mc^2"}
			},
			want: "Explain Formula",
		},
		{
			name: "result",
			setup: func(t *testing.T, m *model) {
				openTestPaper(t, m)
				m.stage = stageResult
				m.result = &resultView{
					paperID:   "p1",
					action:    assist.Action{ID: assist.ActionDeep, Label: "Deep Analysis"},
					selection: "fragment",
					raw:       "A finished answer.",
					rendered:  "A finished answer.",
				}
			},
			want: "Deep Analysis",
		},
		{
			name: "chat",
			setup: func(t *testing.T, m *model) {
				openTestPaper(t, m)
				m.openChatSeeded("the context fragment")
			},
			want: "Context: the context fragment",
		},
		{
			name: "tags",
			setup: func(t *testing.T, m *model) {
				openTestTags(t, m)
			},
			want: "transformers",
		},
		{
			name: "workbench",
			setup: func(t *testing.T, m *model) {
				openTestWorkbench(t, m)
			},
			want: "Scaled dot-product",
		},
		{
			name: "search",
			setup: func(t *testing.T, m *model) {
				seedLibrary(m)
				m.openSearch(stageLibrary)
			},
			want: "Search the Library",
		},
		{
			name: "upload",
			setup: func(t *testing.T, m *model) {
				seedLibrary(m)
				m.Update(keyRune('u'))
			},
			want: "Upload a Paper",
		},
		{
			name: "export",
			setup: func(t *testing.T, m *model) {
				seedLibrary(m, api.PaperSummary{ID: "p1", Title: "One", Status: api.StatusCompleted})
				m.Update(keyRune('E'))
			},
			want: "BibTeX",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(t)
			m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
			tc.setup(t, m)
			out := stripANSI(m.View())
			if out == "" {
				t.Fatalf("empty frame")
			}
			if !strings.Contains(out, tc.want) {
				t.Fatalf("frame missing %q", tc.want)
			}
		})
	}
}

func TestHelpOverlayAppearsInTheFrame(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	openTestPaper(t, m)

	m.Update(keyRune('?'))
	out := stripANSI(m.View())
	if !strings.Contains(out, "Reading Flow") {
		t.Fatalf("help overlay missing from the frame")
	}
}

func TestPlanOverlayAppearsInTheFrame(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	openTestPaper(t, m)

	m.Update(keyRune('p'))
	out := stripANSI(m.View())
	if !strings.Contains(out, "Reading Plan") {
		t.Fatalf("plan overlay missing from the frame")
	}
	if !strings.Contains(out, "Pass 1 - Survey") {
		t.Fatalf("plan overlay lost its first pass")
	}
	if !strings.Contains(out, "Attention Is All You Need") {
		t.Fatalf("plan overlay is not personalized for the open paper")
	}

	m.Update(keyRune('p'))
	out = stripANSI(m.View())
	if strings.Contains(out, "Reading Plan") {
		t.Fatalf("plan overlay survived a second toggle")
	}
}

func TestStatusBarReportsSessionState(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	seedLibrary(m,
		api.PaperSummary{ID: "p1", Title: "One", Status: api.StatusCompleted},
		api.PaperSummary{ID: "p2", Title: "Two", Status: api.StatusCompleted},
	)
	m.library.selected = map[string]bool{"p2": true}

	bar := stripANSI(m.sessionMeterView())
	if !strings.Contains(bar, "Papers 2") {
		t.Fatalf("paper count missing: %q", bar)
	}
	if !strings.Contains(bar, "Marked 1") {
		t.Fatalf("marked count missing: %q", bar)
	}

	m.stream = &streamState{id: "s1", cancel: func() {}}
	bar = stripANSI(m.sessionMeterView())
	if !strings.Contains(bar, "Streaming") {
		t.Fatalf("streaming indicator missing: %q", bar)
	}
	m.stream = nil
}

func TestRenderMarkdownFallsBackToRawText(t *testing.T) {
	m := newTestModel(t)
	m.renderer = nil

	const raw = "plain **bold** text"
	if got := m.renderMarkdown(raw); got != raw {
		t.Fatalf("nil renderer should pass text through, got %q", got)
	}
}

func TestRenderLogoIsStable(t *testing.T) {
	art := renderLogo()
	if art == "" {
		t.Fatalf("logo render came back empty")
	}
	if lines := strings.Split(art, "\n"); len(lines) < len(logoArtLines) {
		t.Fatalf("logo lost rows: %d < %d", len(lines), len(logoArtLines))
	}
}
