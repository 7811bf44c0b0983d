package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// UploadPaper sends a PDF from the local filesystem and returns the
// receipt for the processing task the server starts.
func (c *Client) UploadPaper(ctx context.Context, path string) (UploadReceipt, error) {
	var out UploadReceipt

	f, err := os.Open(path)
	if err != nil {
		return out, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return out, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return out, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return out, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/papers/upload", &buf)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	err = c.do(req, &out)
	return out, err
}

// GetPaper returns the stored metadata for one paper.
func (c *Client) GetPaper(ctx context.Context, paperID string) (PaperDetail, error) {
	var out PaperDetail
	err := c.getJSON(ctx, paperPath(paperID, ""), &out)
	return out, err
}

// GetPaperContent returns the extracted text of a processed paper. The
// server answers 400 until processing has completed.
func (c *Client) GetPaperContent(ctx context.Context, paperID string) (PaperContent, error) {
	var out PaperContent
	err := c.getJSON(ctx, paperPath(paperID, "/content"), &out)
	return out, err
}

// GetProcessingStatus reports how far the pipeline has taken a paper.
func (c *Client) GetProcessingStatus(ctx context.Context, paperID string) (ProcessingStatus, error) {
	var out ProcessingStatus
	err := c.getJSON(ctx, "/api/v1/monitor/"+url.PathEscape(paperID), &out)
	return out, err
}

type activeTasksResponse struct {
	Tasks []ProcessingStatus `json:"tasks"`
	Count int                `json:"count"`
}

// ActiveTasks lists every paper of the user still moving through the
// processing pipeline.
func (c *Client) ActiveTasks(ctx context.Context) ([]ProcessingStatus, error) {
	var out activeTasksResponse
	if err := c.getJSON(ctx, "/api/v1/monitor/", &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}
