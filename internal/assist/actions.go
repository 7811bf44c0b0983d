// Package assist implements the smart-analysis client: ranking the analysis
// actions offered for a selected text fragment and streaming the backend's
// incremental responses.
package assist

import (
	"regexp"
	"sort"
	"strings"
)

// ActionID identifies one of the fixed analysis actions.
type ActionID string

const (
	ActionMath    ActionID = "math"
	ActionFeynman ActionID = "feynman"
	ActionDeep    ActionID = "deep"
	ActionChat    ActionID = "chat"
)

// Action is one candidate operation offered for a selected fragment.
// Priority is computed per selection; lower sorts first.
type Action struct {
	ID       ActionID
	Label    string
	Icon     string
	Priority int
}

var (
	inlineDollar  = regexp.MustCompile(`\$[^$]+\$`)
	parenEscape   = regexp.MustCompile(`(?s)\\\(.+?\\\)`)
	bracketEscape = regexp.MustCompile(`(?s)\\\[.+?\\\]`)
	varRelation   = regexp.MustCompile(`\b[a-zA-Z]\s*[=<>≤≥≠]\s*[0-9a-zA-Z]`)
	mathFunction  = regexp.MustCompile(`(?i)\b(sin|cos|tan|log|ln|exp|lim|max|min)\b`)
)

// mathSymbols are glyphs that essentially never appear in prose. Presence of
// any one of them is enough to treat the fragment as mathematical.
const mathSymbols = "∑∫∏√∞±×÷≤≥≠≈∝≡∈∉⊂⊃∪∩∧∨∂∇αβγδεζηθλμνξπρστφχψωΓΔΘΛΞΠΣΦΨΩ^"

// IsMathExpression reports whether the fragment looks like a mathematical
// expression. It runs a fixed battery of heuristic tests and stops at the
// first hit. False positives and negatives are acceptable; this steers a
// menu ordering, nothing more.
func IsMathExpression(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if inlineDollar.MatchString(text) {
		return true
	}
	if parenEscape.MatchString(text) {
		return true
	}
	if bracketEscape.MatchString(text) {
		return true
	}
	if strings.ContainsAny(text, mathSymbols) {
		return true
	}
	if varRelation.MatchString(text) {
		return true
	}
	return mathFunction.MatchString(text)
}

// RankActions returns the four analysis actions ordered for the given
// fragment. A mathematical fragment promotes the formula explainer to the
// front; otherwise it sinks below the other analysis actions. Chat is
// always last.
func RankActions(text string) []Action {
	actions := []Action{
		{ID: ActionMath, Label: "Explain Formula", Icon: "Σ"},
		{ID: ActionFeynman, Label: "Explain Simply", Icon: "◆"},
		{ID: ActionDeep, Label: "Deep Analysis", Icon: "◎"},
		{ID: ActionChat, Label: "Chat with Paper", Icon: "✎"},
	}

	if IsMathExpression(text) {
		actions[0].Priority = 1
		actions[1].Priority = 2
		actions[2].Priority = 3
	} else {
		actions[0].Priority = 10
		actions[1].Priority = 1
		actions[2].Priority = 2
	}
	actions[3].Priority = 100

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority < actions[j].Priority
	})
	return actions
}
