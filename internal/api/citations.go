package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

type exportRequest struct {
	PaperIDs []string `json:"paper_ids"`
	Format   string   `json:"format"`
}

// ExportCitations renders the given papers as a citation file in the
// requested format. The filename comes from the Content-Disposition
// header, with a format-derived fallback.
func (c *Client) ExportCitations(ctx context.Context, paperIDs []string, format string) (CitationExport, error) {
	var out CitationExport

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/export/citations",
		exportRequest{PaperIDs: paperIDs, Format: format})
	if err != nil {
		return out, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return out, newError(resp)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("read export: %w", err)
	}
	out.Content = content
	out.Filename = exportFilename(resp.Header.Get("Content-Disposition"), format)
	return out, nil
}

// exportFilename extracts the attachment name, ignoring any directory
// components the server might send.
func exportFilename(disposition, format string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return filepath.Base(name)
			}
		}
	}
	switch format {
	case FormatRIS:
		return "citations.ris"
	case FormatPlain:
		return "citations.txt"
	default:
		return "citations.bib"
	}
}

// SaveTo writes the export under dir and returns the destination path.
func (e CitationExport) SaveTo(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := e.Filename
	if name == "" {
		name = "citations.txt"
	}
	dest := filepath.Join(dir, name)
	tmp := dest + ".part"
	if err := os.WriteFile(tmp, e.Content, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return dest, nil
}
