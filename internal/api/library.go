package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// ListPapers returns one page of the user's library. Zero-valued fields
// in opts are omitted from the query so the server applies its defaults.
func (c *Client) ListPapers(ctx context.Context, opts ListOptions) (Library, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	path := "/api/v1/library/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out Library
	err := c.getJSON(ctx, path, &out)
	return out, err
}

// DeletePaper removes a paper and everything derived from it. The server
// refuses while the paper is still being processed.
func (c *Client) DeletePaper(ctx context.Context, paperID string) error {
	var out StatusMessage
	return c.deleteJSON(ctx, "/api/v1/library/"+url.PathEscape(paperID), &out)
}

// Categories returns the distinct categories across the user's papers.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out categoriesResponse
	if err := c.getJSON(ctx, "/api/v1/library/categories", &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// LibraryTags returns every confirmed tag with its usage count.
func (c *Client) LibraryTags(ctx context.Context) ([]TagStat, error) {
	var out []TagStat
	if err := c.getJSON(ctx, "/api/v1/library/tags", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// paperPath builds a papers route for one paper.
func paperPath(paperID, suffix string) string {
	return fmt.Sprintf("/api/v1/papers/%s%s", url.PathEscape(paperID), suffix)
}
