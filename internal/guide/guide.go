// Package guide builds the per-paper reading plan shown inside the reader.
package guide

import (
	"fmt"
	"strings"
)

// Step is one stage of the reading plan.
type Step struct {
	Title       string
	Description string
}

// Metadata personalizes the plan for the open paper.
type Metadata struct {
	Title    string
	Sections int
}

// Build returns a three-pass reading plan. The passes reference the
// reader's own tools so every step is actionable in place.
func Build(meta Metadata) []Step {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = "the paper"
	}

	survey := fmt.Sprintf("Skim %s end to end: title, abstract, headings, figures. Decide whether it deserves a second pass.", title)
	if meta.Sections > 0 {
		survey = fmt.Sprintf("Skim %s end to end; %d section(s) are mapped, so [ and ] walk the whole structure in minutes. Read the analysis summary first.", title, meta.Sections)
	}

	return []Step{
		{
			Title:       "Pass 1 - Survey",
			Description: survey,
		},
		{
			Title:       "Pass 2 - Understand",
			Description: "Read the core sections properly. Highlight anything dense with v and run Explain Simply on it; keep going until you can restate the problem, the method, and the evaluation in your own words.",
		},
		{
			Title:       "Pass 3 - Verify",
			Description: "Work through the mathematics. Highlight each formula for Explain Formula, then run Deep Analysis on the claims that carry the paper. Note what you could not verify.",
		},
		{
			Title:       "Capture",
			Description: "File what you learned: M saves a highlighted method, D scans a selection for datasets and code, m stores a note with your reflection. The workbench (w) collects them across papers.",
		},
		{
			Title:       "Discuss and cite",
			Description: "Chat with the paper (c) about anything still unclear, tag it (t) so you can find it again, and export its citation (E) when it earns a place in your writing.",
		},
	}
}
