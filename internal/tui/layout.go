package tui

import (
	"regexp"
	"strings"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	// Hero, status bar, and the message lines share the rest of the column.
	const chrome = 12
	usable := height - chrome
	if usable < 6 {
		usable = 6
	}
	l.viewportHeight = usable
}

type displayView struct {
	content  string
	anchors  map[string]int
	sections []string
}

// contentBuilder accumulates pane content a line at a time while
// tracking the running line count, so callers can record the line a
// row or section header landed on.
type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

// WriteLine writes s followed by a newline. s may itself span lines.
func (cb *contentBuilder) WriteLine(s string) {
	cb.builder.WriteString(s)
	cb.builder.WriteByte('\n')
	cb.lines += strings.Count(s, "\n") + 1
}

func (cb *contentBuilder) BlankLine() {
	cb.builder.WriteByte('\n')
	cb.lines++
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

// prefixLines puts prefix in front of every line, for markers that
// plain space indentation cannot express.
func prefixLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// matchPos locates one search hit in the rendered reader content. Hits
// are found per line, so jumping to a match never needs to re-derive
// the line from a byte offset.
type matchPos struct {
	line  int
	start int
	end   int
}

// findMatches scans the rendered lines for case-insensitive hits,
// ordered by line and then by column.
func findMatches(lines []string, query string) []matchPos {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}
	var matches []matchPos
	for idx, line := range lines {
		lower := strings.ToLower(line)
		col := 0
		for {
			rel := strings.Index(lower[col:], query)
			if rel < 0 {
				break
			}
			start := col + rel
			matches = append(matches, matchPos{line: idx, start: start, end: start + len(query)})
			col = start + len(query)
		}
	}
	return matches
}

// decorateLines styles the reader lines in a single pass: search hits
// inside a line first, then the cursor bar or selection tint around the
// whole line. matches must be in findMatches order; currentMatch picks
// the hit that gets the active style.
func decorateLines(lines []string, matches []matchPos, currentMatch, cursor, selStart, selEnd int, hasSelection bool) string {
	styled := make([]string, len(lines))
	next := 0
	for idx, line := range lines {
		first := next
		for next < len(matches) && matches[next].line == idx {
			next++
		}
		if next > first {
			line = styleLineMatches(line, matches[first:next], currentMatch-first)
		}
		inSelection := hasSelection && idx >= selStart && idx <= selEnd
		switch {
		case idx == cursor:
			line = currentLineStyle.Render(line)
		case inSelection:
			line = selectionLineStyle.Render(line)
		}
		styled[idx] = line
	}
	return strings.Join(styled, "\n")
}

func styleLineMatches(line string, hits []matchPos, current int) string {
	var b strings.Builder
	pos := 0
	for idx, hit := range hits {
		if hit.start < pos || hit.end > len(line) {
			continue
		}
		b.WriteString(line[pos:hit.start])
		segment := line[hit.start:hit.end]
		if idx == current {
			b.WriteString(searchCurrentStyle.Render(segment))
		} else {
			b.WriteString(searchHighlightStyle.Render(segment))
		}
		pos = hit.end
	}
	if pos < len(line) {
		b.WriteString(line[pos:])
	}
	return b.String()
}

// previewText collapses a value to at most limit runes for status lines
// and confirmation prompts, preferring to break at a word boundary.
func previewText(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}

var ansiEscapeCodes = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

func stripANSI(text string) string {
	return ansiEscapeCodes.ReplaceAllString(text, "")
}
