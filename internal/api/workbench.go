package api

import (
	"context"
	"net/url"
)

type reflectionRequest struct {
	Reflection string `json:"reflection"`
}

func itemPath(itemID string) string {
	return "/api/v1/workbench/items/" + url.PathEscape(itemID)
}

// GetWorkbench returns every workbench item of the user, grouped by zone.
func (c *Client) GetWorkbench(ctx context.Context) (Workbench, error) {
	var out Workbench
	err := c.getJSON(ctx, "/api/v1/workbench", &out)
	return out, err
}

// GetPaperWorkbench returns the workbench items collected from one paper.
func (c *Client) GetPaperWorkbench(ctx context.Context, paperID string) (Workbench, error) {
	var out Workbench
	err := c.getJSON(ctx, paperPath(paperID, "/workbench"), &out)
	return out, err
}

// GetWorkbenchStats reports how many items sit in each zone.
func (c *Client) GetWorkbenchStats(ctx context.Context) (WorkbenchStats, error) {
	var out WorkbenchStats
	err := c.getJSON(ctx, "/api/v1/workbench/stats", &out)
	return out, err
}

// AddWorkbenchItem stores a new item in the user's workbench.
func (c *Client) AddWorkbenchItem(ctx context.Context, item AddItemRequest) (WorkbenchItem, error) {
	var out WorkbenchItem
	err := c.postJSON(ctx, "/api/v1/workbench/items", item, &out)
	return out, err
}

// AddPaperWorkbenchItem stores an item bound to a specific paper.
func (c *Client) AddPaperWorkbenchItem(ctx context.Context, paperID string, item AddItemRequest) (WorkbenchItem, error) {
	var out WorkbenchItem
	err := c.postJSON(ctx, paperPath(paperID, "/workbench/items"), item, &out)
	return out, err
}

// GetWorkbenchItem returns one item by id.
func (c *Client) GetWorkbenchItem(ctx context.Context, itemID string) (WorkbenchItem, error) {
	var out WorkbenchItem
	err := c.getJSON(ctx, itemPath(itemID), &out)
	return out, err
}

// UpdateWorkbenchItem patches an item; zero-valued fields stay unchanged.
func (c *Client) UpdateWorkbenchItem(ctx context.Context, itemID string, patch UpdateItemRequest) (WorkbenchItem, error) {
	var out WorkbenchItem
	err := c.putJSON(ctx, itemPath(itemID), patch, &out)
	return out, err
}

// DeleteWorkbenchItem removes one item.
func (c *Client) DeleteWorkbenchItem(ctx context.Context, itemID string) error {
	var out StatusMessage
	return c.deleteJSON(ctx, itemPath(itemID), &out)
}

// AnalyzeMethod distills a selected fragment into a method card and files
// it in the methods zone.
func (c *Client) AnalyzeMethod(ctx context.Context, req AnalyzeTextRequest) (MethodAnalysis, error) {
	var out MethodAnalysis
	err := c.postJSON(ctx, "/api/v1/workbench/analyze/method", req, &out)
	return out, err
}

// AnalyzeAsset extracts datasets and code references from a selected
// fragment and files them in the datasets zone.
func (c *Client) AnalyzeAsset(ctx context.Context, req AnalyzeTextRequest) (AssetAnalysis, error) {
	var out AssetAnalysis
	err := c.postJSON(ctx, "/api/v1/workbench/analyze/asset", req, &out)
	return out, err
}

// CreateNote stores a reading note, optionally pinned to a text location.
func (c *Client) CreateNote(ctx context.Context, req CreateNoteRequest) (NoteReceipt, error) {
	var out NoteReceipt
	err := c.postJSON(ctx, "/api/v1/workbench/notes", req, &out)
	return out, err
}

// UpdateReflection rewrites the reflection attached to a note.
func (c *Client) UpdateReflection(ctx context.Context, itemID, reflection string) (NoteReceipt, error) {
	var out NoteReceipt
	err := c.putJSON(ctx, "/api/v1/workbench/notes/"+url.PathEscape(itemID)+"/reflection",
		reflectionRequest{Reflection: reflection}, &out)
	return out, err
}
