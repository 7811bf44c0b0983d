package tui

import (
	"strings"
	"testing"
)

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name           string
		width          int
		height         int
		viewportWidth  int
		viewportHeight int
	}{
		{name: "standard", width: 80, height: 24, viewportWidth: 76, viewportHeight: 12},
		{name: "wide", width: 200, height: 40, viewportWidth: 196, viewportHeight: 28},
		{name: "narrow floor", width: 30, height: 24, viewportWidth: 40, viewportHeight: 12},
		{name: "short floor", width: 100, height: 10, viewportWidth: 96, viewportHeight: 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.viewportWidth != tc.viewportWidth {
				t.Fatalf("viewport width mismatch: got %d want %d", layout.viewportWidth, tc.viewportWidth)
			}
			if layout.viewportHeight != tc.viewportHeight {
				t.Fatalf("viewport height mismatch: got %d want %d", layout.viewportHeight, tc.viewportHeight)
			}
		})
	}
}

func TestFindMatchesReportsLineAndColumn(t *testing.T) {
	lines := []string{"Attention is all you need.", "the decay of attention"}

	matches := findMatches(lines, "attention")
	if len(matches) != 2 {
		t.Fatalf("match count = %d, want 2", len(matches))
	}
	if matches[0] != (matchPos{line: 0, start: 0, end: 9}) {
		t.Fatalf("first match = %+v", matches[0])
	}
	if matches[1].line != 1 {
		t.Fatalf("second match line = %d, want 1", matches[1].line)
	}
	if got := lines[1][matches[1].start:matches[1].end]; got != "attention" {
		t.Fatalf("second match text = %q", got)
	}

	if got := findMatches(lines, ""); got != nil {
		t.Fatalf("empty query should yield no matches, got %v", got)
	}
	if got := findMatches(lines, "zzz"); got != nil {
		t.Fatalf("absent query should yield no matches, got %v", got)
	}
}

func TestFindMatchesConsecutive(t *testing.T) {
	matches := findMatches([]string{"aaaa"}, "aa")
	if len(matches) != 2 {
		t.Fatalf("match count = %d, want 2 non-overlapping", len(matches))
	}
	if matches[1].start != 2 {
		t.Fatalf("second match start = %d, want 2", matches[1].start)
	}
}

func TestDecorateLinesKeepsAllText(t *testing.T) {
	lines := []string{"gradient descent converges", "the descent continues"}
	matches := findMatches(lines, "descent")

	got := stripANSI(decorateLines(lines, matches, 0, 0, 0, 0, false))
	if want := strings.Join(lines, "\n"); got != want {
		t.Fatalf("decoration altered the text: %q", got)
	}
}

func TestDecorateLinesPreservesShape(t *testing.T) {
	lines := []string{"one", "two", "three", "four"}

	got := decorateLines(lines, nil, -1, 1, 2, 3, true)
	if split := strings.Split(got, "\n"); len(split) != 4 {
		t.Fatalf("line count = %d, want 4", len(split))
	}
	if want := strings.Join(lines, "\n"); stripANSI(got) != want {
		t.Fatalf("decoration altered the text: %q", stripANSI(got))
	}
}

func TestPreviewText(t *testing.T) {
	if got := previewText("  short  ", 20); got != "short" {
		t.Fatalf("short preview = %q, want short", got)
	}
	if got := previewText("alpha beta gamma", 12); got != "alpha beta…" {
		t.Fatalf("word-boundary preview = %q, want alpha beta…", got)
	}
	if got := previewText("abcdefghijklmnop", 8); got != "abcdefgh…" {
		t.Fatalf("unbroken preview = %q, want abcdefgh…", got)
	}
	if got := previewText("unlimited", 0); got != "unlimited" {
		t.Fatalf("zero limit should pass through, got %q", got)
	}
}

func TestPrefixLines(t *testing.T) {
	if got := prefixLines("a\nb", "> "); got != "> a\n> b" {
		t.Fatalf("prefixLines = %q", got)
	}
}

func TestSectionKeyDeduplicates(t *testing.T) {
	used := map[string]bool{}
	if got := sectionKey("Introduction", used); got != "Introduction" {
		t.Fatalf("first key = %q", got)
	}
	if got := sectionKey("Introduction", used); got != "Introduction (2)" {
		t.Fatalf("second key = %q, want Introduction (2)", got)
	}
	if got := sectionKey("Introduction", used); got != "Introduction (3)" {
		t.Fatalf("third key = %q, want Introduction (3)", got)
	}
	if got := sectionKey("   ", used); got != "section" {
		t.Fatalf("blank title key = %q, want section", got)
	}
}

func TestContentBuilderTracksLines(t *testing.T) {
	cb := &contentBuilder{}
	if cb.Line() != 0 {
		t.Fatalf("fresh builder line = %d, want 0", cb.Line())
	}
	cb.WriteLine("first")
	cb.WriteLine("second\nthird")
	cb.BlankLine()
	cb.WriteString("tail")
	if cb.Line() != 4 {
		t.Fatalf("line after four rows = %d, want 4", cb.Line())
	}
	if !strings.HasSuffix(cb.String(), "\ntail") {
		t.Fatalf("builder content = %q", cb.String())
	}
}
