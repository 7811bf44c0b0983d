package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) openUpload() (tea.Model, tea.Cmd) {
	m.stage = stageUpload
	m.mode = modeInsert
	m.composer.Placeholder = composerPathPlaceholder
	m.composer.SetValue("")
	m.composer.Focus()
	m.infoMessage = "Path to a PDF, Enter uploads. ~ expands to your home."
	return m, textinput.Blink
}

func (m *model) closeUpload() {
	m.composer.Blur()
	m.mode = modeNormal
	m.stage = stageLibrary
	m.infoMessage = "Upload canceled."
}

func (m *model) handleUploadKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyEnter {
		path := expandPath(strings.TrimSpace(m.composer.Value()))
		if path == "" {
			m.infoMessage = "Type a path to a PDF first."
			return m, nil
		}
		m.composer.SetValue("")
		m.composer.Blur()
		m.mode = modeNormal
		m.stage = stageLibrary
		m.infoMessage = fmt.Sprintf("Uploading %s…", filepath.Base(path))
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindUpload, uploadPaperJob(m.config.Client, path)))
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return m, cmd
}

func (m *model) handleUploadResult(msg uploadResultMsg) tea.Cmd {
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		m.infoMessage = "Upload failed."
		return nil
	}
	m.errorMessage = ""
	info := fmt.Sprintf("Uploaded %s (%d page(s)). Processing has started.", msg.receipt.Filename, msg.info.Pages)
	if !msg.info.HasTextLayer {
		info = fmt.Sprintf("%s Looks scanned; no text layer, so OCR will take a while.", info)
	}
	m.infoMessage = info
	return m.reloadLibrary()
}

func expandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
