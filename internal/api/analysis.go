package api

import "context"

// TriggerAnalysis starts structure extraction for a paper. The work runs
// in the background; poll GetAnalysis for the result.
func (c *Client) TriggerAnalysis(ctx context.Context, paperID string) (AnalysisStart, error) {
	var out AnalysisStart
	err := c.postJSON(ctx, paperPath(paperID, "/analyze"), nil, &out)
	return out, err
}

// GetAnalysis returns the extracted methods, datasets, code references,
// and section structure of a paper, or its current analysis state when
// extraction has not finished.
func (c *Client) GetAnalysis(ctx context.Context, paperID string) (AnalysisResult, error) {
	var out AnalysisResult
	err := c.getJSON(ctx, paperPath(paperID, "/analysis"), &out)
	return out, err
}
