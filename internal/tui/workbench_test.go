package tui

import (
	"strings"
	"testing"

	"github.com/asengupta/deepread/internal/api"
)

func openTestWorkbench(t *testing.T, m *model) {
	t.Helper()
	seedLibrary(m, api.PaperSummary{ID: "p1", Title: "Attention", Status: api.StatusCompleted})
	if _, cmd := m.Update(keyRune('w')); cmd == nil {
		t.Fatalf("opening the workbench should start the load job")
	}
	m.Update(workbenchLoadedMsg{
		wb: api.Workbench{
			Methods: []api.WorkbenchItem{
				{ID: "m1", Type: "method", Title: "Scaled dot-product", Zone: api.ZoneMethods},
				{ID: "m2", Type: "method", Title: "Positional encoding", Zone: api.ZoneMethods},
			},
			Notes: []api.WorkbenchItem{
				{ID: "n1", Type: "note", Title: "Key insight", Zone: api.ZoneNotes,
					Data: map[string]any{"reflection": "revisit section 3"}},
			},
		},
		stats: api.WorkbenchStats{TotalItems: 3, MethodsCount: 2, NotesCount: 1, PapersCount: 1},
	})
}

func TestOpenWorkbenchScopesToWholeLibrary(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)

	if m.stage != stageWorkbench {
		t.Fatalf("stage = %v, want %v", m.stage, stageWorkbench)
	}
	if m.workbench.paperID != "" {
		t.Fatalf("library workbench should not be scoped, got %q", m.workbench.paperID)
	}
	if m.workbench.zone != api.ZoneMethods {
		t.Fatalf("zone = %q, want %q", m.workbench.zone, api.ZoneMethods)
	}
	if m.workbenchReturn != stageLibrary {
		t.Fatalf("workbenchReturn = %v, want %v", m.workbenchReturn, stageLibrary)
	}
}

func TestTabCyclesZonesAndResetsCursor(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)
	m.Update(keyRune('j'))
	if m.workbench.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.workbench.cursor)
	}

	zones := []string{api.ZoneDatasets, api.ZoneNotes, api.ZoneMethods}
	for i, want := range zones {
		m.cycleZone()
		if m.workbench.zone != want {
			t.Fatalf("step %d: zone = %q, want %q", i, m.workbench.zone, want)
		}
		if m.workbench.cursor != 0 {
			t.Fatalf("step %d: cursor not reset", i)
		}
	}
}

func TestZoneItemsFollowTheActiveZone(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)

	if got := len(m.zoneItems()); got != 2 {
		t.Fatalf("methods zone items = %d, want 2", got)
	}
	m.workbench.zone = api.ZoneDatasets
	if got := len(m.zoneItems()); got != 0 {
		t.Fatalf("datasets zone items = %d, want 0", got)
	}
	m.workbench.zone = api.ZoneNotes
	if got := len(m.zoneItems()); got != 1 {
		t.Fatalf("notes zone items = %d, want 1", got)
	}
}

func TestWorkbenchLoadedClampsCursor(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)
	m.workbench.cursor = 9

	m.Update(workbenchLoadedMsg{
		wb:    api.Workbench{Methods: []api.WorkbenchItem{{ID: "m1", Type: "method", Title: "Only one"}}},
		stats: api.WorkbenchStats{TotalItems: 1, MethodsCount: 1},
	})
	if m.workbench.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.workbench.cursor)
	}
}

func TestDeleteRequiresAnItemUnderTheCursor(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)
	m.workbench.zone = api.ZoneDatasets

	_, cmd := m.Update(keyRune('d'))
	if cmd != nil {
		t.Fatalf("empty zone should not start a delete")
	}

	m.workbench.zone = api.ZoneMethods
	_, cmd = m.Update(keyRune('d'))
	if cmd == nil {
		t.Fatalf("delete should start for the selected method")
	}
}

func TestReflectionEditingIsNotesOnly(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)

	m.Update(keyRune('r'))
	if m.mode == modeInsert {
		t.Fatalf("reflections should not edit in the methods zone")
	}
	if !strings.Contains(m.infoMessage, "notes zone") {
		t.Fatalf("info = %q", m.infoMessage)
	}

	m.workbench.zone = api.ZoneNotes
	m.workbench.cursor = 0
	m.Update(keyRune('r'))
	if m.mode != modeInsert {
		t.Fatalf("r in the notes zone should enter insert mode")
	}
	if m.workbench.editing != "n1" {
		t.Fatalf("editing = %q, want n1", m.workbench.editing)
	}
	if got := m.composer.Value(); got != "revisit section 3" {
		t.Fatalf("composer should seed the current reflection, got %q", got)
	}
}

func TestReflectionSubmitStartsTheSaveJob(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)
	m.workbench.zone = api.ZoneNotes
	m.Update(keyRune('r'))
	m.composer.SetValue("new thought")

	_, cmd := m.Update(keyEnter())
	if cmd == nil {
		t.Fatalf("enter should start the reflection save")
	}
	if m.mode != modeNormal || m.workbench.editing != "" {
		t.Fatalf("insert state not cleared after submit")
	}
}

func TestCaptureResultReloadsOnlyWhileOnScreen(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m, api.PaperSummary{ID: "p1", Title: "Attention", Status: api.StatusCompleted})

	if cmd := m.handleCaptureResult(captureResultMsg{kind: captureMethod, label: "attention is all"}); cmd != nil {
		t.Fatalf("capture from the reader should not reload a closed workbench")
	}
	if !strings.Contains(m.infoMessage, "Method card saved") {
		t.Fatalf("info = %q", m.infoMessage)
	}

	openTestWorkbench(t, m)
	if cmd := m.handleCaptureResult(captureResultMsg{kind: captureNote, label: "x"}); cmd == nil {
		t.Fatalf("capture while the workbench is open should reload it")
	}
}

func TestItemTitleAndReflectionFallbacks(t *testing.T) {
	if got := itemTitle(api.WorkbenchItem{Type: "note"}); got != "note" {
		t.Fatalf("untitled item title = %q, want the type", got)
	}
	if got := itemTitle(api.WorkbenchItem{Type: "note", Title: "named"}); got != "named" {
		t.Fatalf("titled item = %q", got)
	}
	if got := itemReflection(api.WorkbenchItem{}); got != "" {
		t.Fatalf("missing data reflection = %q, want empty", got)
	}
	item := api.WorkbenchItem{Data: map[string]any{"reflection": 42}}
	if got := itemReflection(item); got != "" {
		t.Fatalf("non-string reflection = %q, want empty", got)
	}
}

func TestBuildWorkbenchContentShowsStatsAndZones(t *testing.T) {
	m := newTestModel(t)
	openTestWorkbench(t, m)

	content, focus := m.buildWorkbenchContent()
	plain := stripANSI(content)
	if !strings.Contains(plain, "3 item(s)") {
		t.Fatalf("stats line missing: %q", plain)
	}
	if !strings.Contains(plain, "Methods") || !strings.Contains(plain, "Notes") {
		t.Fatalf("zone tabs missing: %q", plain)
	}
	if !strings.Contains(plain, "Scaled dot-product") {
		t.Fatalf("method row missing")
	}
	if focus < 0 {
		t.Fatalf("focus = %d, want a visible row", focus)
	}
}
