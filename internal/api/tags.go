package api

import (
	"context"
	"net/url"
)

type confirmTagsRequest struct {
	Tags []string `json:"tags"`
}

type addTagRequest struct {
	Tag string `json:"tag"`
}

// ClassifyPaper asks the server to suggest tags for a paper. The
// suggestions stay pending until the user confirms a final set.
func (c *Client) ClassifyPaper(ctx context.Context, paperID string) (Classification, error) {
	var out Classification
	err := c.postJSON(ctx, paperPath(paperID, "/classify"), nil, &out)
	return out, err
}

// GetTags returns a paper's confirmed and suggested tags.
func (c *Client) GetTags(ctx context.Context, paperID string) (PaperTags, error) {
	var out PaperTags
	err := c.getJSON(ctx, paperPath(paperID, "/tags"), &out)
	return out, err
}

// ConfirmTags replaces a paper's tag set and marks it user-confirmed.
func (c *Client) ConfirmTags(ctx context.Context, paperID string, tags []string) (PaperTags, error) {
	var out PaperTags
	err := c.putJSON(ctx, paperPath(paperID, "/tags"), confirmTagsRequest{Tags: tags}, &out)
	return out, err
}

// AddTag appends one tag to a paper, keeping the rest untouched.
func (c *Client) AddTag(ctx context.Context, paperID, tag string) (PaperTags, error) {
	var out PaperTags
	err := c.postJSON(ctx, paperPath(paperID, "/tags"), addTagRequest{Tag: tag}, &out)
	return out, err
}

// RemoveTag deletes one tag from a paper.
func (c *Client) RemoveTag(ctx context.Context, paperID, tag string) error {
	var out StatusMessage
	return c.deleteJSON(ctx, paperPath(paperID, "/tags/"+url.PathEscape(tag)), &out)
}
