package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/pdfinfo"
)

func TestUploadFormSubmitsThePath(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m)

	m.Update(keyRune('u'))
	if m.stage != stageUpload || m.mode != modeInsert {
		t.Fatalf("u should open the upload form in insert mode")
	}
	if !m.composer.Focused() {
		t.Fatalf("composer should take focus")
	}

	m.composer.SetValue("  /papers/attention.pdf  ")
	_, cmd := m.Update(keyEnter())
	if cmd == nil {
		t.Fatalf("enter should start the upload job")
	}
	if m.stage != stageLibrary {
		t.Fatalf("stage = %v, want %v while the upload runs", m.stage, stageLibrary)
	}
	if !strings.Contains(m.infoMessage, "attention.pdf") {
		t.Fatalf("info = %q", m.infoMessage)
	}
}

func TestUploadFormRejectsEmptyPath(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m)
	m.Update(keyRune('u'))

	_, cmd := m.Update(keyEnter())
	if cmd != nil {
		t.Fatalf("empty path should not start a job")
	}
	if m.stage != stageUpload {
		t.Fatalf("the form should stay open, stage = %v", m.stage)
	}
}

func TestEscClosesTheUploadForm(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m)
	m.Update(keyRune('u'))

	m.Update(keyEsc())
	if m.stage != stageLibrary {
		t.Fatalf("stage = %v, want %v", m.stage, stageLibrary)
	}
	if m.composer.Focused() {
		t.Fatalf("composer should blur on cancel")
	}
}

func TestUploadResultReportsPagesAndReloads(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m)

	cmd := m.handleUploadResult(uploadResultMsg{
		info:    pdfinfo.Info{Pages: 12, HasTextLayer: true},
		receipt: api.UploadReceipt{ID: "p9", Filename: "attention.pdf", Status: api.StatusUploading},
	})
	if cmd == nil {
		t.Fatalf("a finished upload should reload the library")
	}
	if !strings.Contains(m.infoMessage, "12 page(s)") {
		t.Fatalf("info = %q", m.infoMessage)
	}
	if strings.Contains(m.infoMessage, "scanned") {
		t.Fatalf("text-layer uploads should not warn about OCR: %q", m.infoMessage)
	}
}

func TestUploadResultWarnsAboutScannedPDFs(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m)

	m.handleUploadResult(uploadResultMsg{
		info:    pdfinfo.Info{Pages: 3, HasTextLayer: false},
		receipt: api.UploadReceipt{ID: "p9", Filename: "scan.pdf"},
	})
	if !strings.Contains(m.infoMessage, "OCR") {
		t.Fatalf("info = %q, want an OCR warning", m.infoMessage)
	}
}

func TestUploadResultErrorStaysInPlace(t *testing.T) {
	m := newTestModel(t)
	seedLibrary(m)

	cmd := m.handleUploadResult(uploadResultMsg{err: errors.New("not a pdf")})
	if cmd != nil {
		t.Fatalf("a failed upload should not reload")
	}
	if m.errorMessage != "not a pdf" {
		t.Fatalf("errorMessage = %q", m.errorMessage)
	}
}
