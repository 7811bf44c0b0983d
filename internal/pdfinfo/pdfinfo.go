// Package pdfinfo inspects local PDF files before they are uploaded.
package pdfinfo

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// sampledPages bounds how many pages the text-layer probe reads.
const sampledPages = 3

// Info describes a local PDF about to be uploaded.
type Info struct {
	Path      string
	SizeBytes int64
	Pages     int
	Title     string
	// HasTextLayer is false for scanned documents whose first pages carry
	// no extractable text.
	HasTextLayer bool
}

// Inspect opens the file at path and reports page count, the embedded
// title when one exists, and whether the leading pages carry extractable
// text.
func Inspect(path string) (Info, error) {
	info := Info{Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		return info, err
	}
	if stat.Size() == 0 {
		return info, fmt.Errorf("%s is empty", path)
	}
	info.SizeBytes = stat.Size()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return info, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	info.Pages = reader.NumPage()
	info.Title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())
	info.HasTextLayer = hasText(reader)
	return info, nil
}

func hasText(reader *pdf.Reader) bool {
	limit := reader.NumPage()
	if limit > sampledPages {
		limit = sampledPages
	}
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			return true
		}
	}
	return false
}
