package tui

import (
	"time"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/assist"
	"github.com/asengupta/deepread/internal/pdfinfo"
)

type stage int

const (
	stageLibrary stage = iota
	stageLoading
	stageReader
	stageActions
	stageResult
	stageChat
	stageTags
	stageWorkbench
	stageSearch
	stageUpload
	stageExport
)

type interactionMode int

const (
	modeNormal interactionMode = iota
	modeInsert
	modeHighlight
)

const heroTagline = "Read papers deeply, straight from the terminal."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	statusPollInterval        = 2 * time.Second
	streamBufferSize          = 16
)

const (
	searchLibraryPlaceholder = "Search the library…"
	searchReaderPlaceholder  = "Search within the paper…"
	composerTagPlaceholder   = "New tag, Enter to add…"
	composerChatPlaceholder  = "Ask the paper, Enter to send…"
	composerPathPlaceholder  = "Path to a PDF file…"
)

type libraryLoadedMsg struct {
	lib        api.Library
	categories []string
	err        error
}

type paperOpenedMsg struct {
	paperID  string
	detail   api.PaperDetail
	content  api.PaperContent
	analysis *api.AnalysisResult
	err      error
}

type paperDeletedMsg struct {
	paperID string
	err     error
}

type uploadResultMsg struct {
	info    pdfinfo.Info
	receipt api.UploadReceipt
	err     error
}

type statusTickMsg struct{}

type statusReportMsg struct {
	tasks []api.ProcessingStatus
	err   error
}

type analysisStartedMsg struct {
	paperID string
	start   api.AnalysisStart
	err     error
}

type tagsLoadedMsg struct {
	paperID string
	tags    api.PaperTags
	err     error
}

type classifyResultMsg struct {
	paperID string
	result  api.Classification
	err     error
}

type tagsSavedMsg struct {
	paperID string
	tags    api.PaperTags
	err     error
}

type workbenchLoadedMsg struct {
	wb    api.Workbench
	stats api.WorkbenchStats
	err   error
}

type workbenchDeletedMsg struct {
	itemID string
	err    error
}

type captureResultMsg struct {
	kind  captureKind
	label string
	err   error
}

type reflectionSavedMsg struct {
	itemID string
	err    error
}

type exportResultMsg struct {
	path  string
	count int
	err   error
}

type captureKind string

const (
	captureMethod captureKind = "method"
	captureAsset  captureKind = "asset"
	captureNote   captureKind = "note"
)

type streamEvent struct {
	content string
	done    bool
	err     error
}

type streamDeltaMsg struct {
	streamID string
	event    streamEvent
	updates  chan streamEvent
}

type streamClosedMsg struct {
	streamID string
}

type fallbackResultMsg struct {
	streamID string
	content  string
	err      error
}

type streamTarget int

const (
	streamTargetResult streamTarget = iota
	streamTargetChat
)

type streamState struct {
	id            string
	target        streamTarget
	request       assist.Request
	cancel        func()
	fallbackTried bool
}
