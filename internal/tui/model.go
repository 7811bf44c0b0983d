package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/assist"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Client    *api.Client
	Assist    *assist.Client
	Logger    zerolog.Logger
	ExportDir string
	Username  string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	composer := textinput.New()
	composer.CharLimit = 600
	composer.Width = 70

	searchInput := textinput.New()
	searchInput.Placeholder = searchLibraryPlaceholder
	searchInput.CharLimit = 120
	searchInput.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	reader := viewport.New(80, 20)
	reader.MouseWheelEnabled = true

	pane := viewport.New(80, 20)
	pane.MouseWheelEnabled = true

	return &model{
		config:         config,
		stage:          stageLoading,
		mode:           modeNormal,
		composer:       composer,
		searchInput:    searchInput,
		spinner:        spin,
		viewport:       reader,
		pane:           pane,
		renderer:       newMarkdownRenderer(80 - viewportHorizontalPadding),
		layout:         newPageLayout(),
		jobs:           newJobBus(config.Logger),
		jobStates:      map[jobKind]jobSnapshot{},
		library:        libraryState{selected: map[string]bool{}, progress: map[string]api.ProcessingStatus{}, loading: true},
		searchMatchIdx: -1,
		viewportDirty:  true,
		sectionAnchors: map[string]int{},
		infoMessage:    "Loading your library…",
	}
}

type model struct {
	config Config
	stage  stage
	mode   interactionMode

	composer    textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model
	viewport    viewport.Model
	pane        viewport.Model
	renderer    *glamour.TermRenderer
	layout      pageLayout

	jobs      *jobBus
	jobStates map[jobKind]jobSnapshot
	polling   bool

	library   libraryState
	reader    readerState
	popup     *actionPopup
	result    *resultView
	chat      chatState
	tags      tagsState
	workbench workbenchState
	export    exportState
	stream    *streamState

	searchReturn    stage
	tagsReturn      stage
	workbenchReturn stage

	cursorLine      int
	lineCount       int
	viewportLines   []string
	viewportDirty   bool
	searchQuery     string
	searchMatches   []matchPos
	searchMatchIdx  int
	selectionAnchor int
	selectionActive bool
	sectionAnchors  map[string]int
	sectionOrder    []string

	infoMessage  string
	errorMessage string
	helpVisible  bool
	planVisible  bool
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.reloadLibrary())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.spinnerBusy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.cancelStream()
			return m, tea.Quit
		case tea.KeyEsc:
			return m.handleEsc()
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		switch m.stage {
		case stageReader:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case stageLibrary, stageResult, stageChat, stageTags, stageWorkbench, stageExport:
			var cmd tea.Cmd
			m.pane, cmd = m.pane.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.pane.Width = m.layout.viewportWidth
		m.pane.Height = m.layout.viewportHeight
		m.renderer = newMarkdownRenderer(m.layout.viewportWidth)
		m.rerenderMarkdown()
		m.markViewportDirty()
		return m, nil
	case jobSignalMsg:
		m.recordJob(msg.Snapshot)
		if msg.Snapshot.Status == jobStatusRunning {
			return m, m.spinner.Tick
		}
		return m, nil
	case jobResultEnvelope:
		m.recordJob(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case libraryLoadedMsg:
		return m, m.handleLibraryLoaded(msg)
	case paperOpenedMsg:
		return m, m.handlePaperOpened(msg)
	case paperDeletedMsg:
		return m, m.handlePaperDeleted(msg)
	case uploadResultMsg:
		return m, m.handleUploadResult(msg)
	case statusTickMsg:
		return m, m.handleStatusTick()
	case statusReportMsg:
		return m, m.handleStatusReport(msg)
	case analysisStartedMsg:
		return m, m.handleAnalysisStarted(msg)
	case tagsLoadedMsg:
		return m, m.handleTagsLoaded(msg)
	case classifyResultMsg:
		return m, m.handleClassifyResult(msg)
	case tagsSavedMsg:
		return m, m.handleTagsSaved(msg)
	case workbenchLoadedMsg:
		return m, m.handleWorkbenchLoaded(msg)
	case workbenchDeletedMsg:
		return m, m.handleWorkbenchDeleted(msg)
	case captureResultMsg:
		return m, m.handleCaptureResult(msg)
	case reflectionSavedMsg:
		return m, m.handleReflectionSaved(msg)
	case exportResultMsg:
		return m, m.handleExportResult(msg)
	case streamDeltaMsg:
		return m, m.handleStreamDelta(msg)
	case streamClosedMsg:
		return m, m.handleStreamClosed(msg)
	case fallbackResultMsg:
		return m, m.handleFallbackResult(msg)
	}
	return m, nil
}

// handleEsc backs out of the innermost activity first: insert modes and
// overlays close before their surface does, and the library is the only
// surface Esc quits from.
func (m *model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageActions:
		m.closeActionPopup()
		return m, nil
	case stageResult:
		m.closeResult()
		return m, nil
	case stageChat:
		if m.stream != nil && m.stream.target == streamTargetChat {
			m.cancelChatTurn()
			return m, nil
		}
		m.composer.Blur()
		m.mode = modeNormal
		m.stage = stageReader
		m.infoMessage = "Back to the reader. c reopens the chat."
		return m, nil
	case stageReader:
		if m.mode == modeHighlight {
			m.mode = modeNormal
			m.selectionActive = false
			m.infoMessage = "Highlight mode off."
			m.markViewportDirty()
			return m, nil
		}
		m.leaveReader()
		return m, nil
	case stageSearch:
		m.searchInput.Blur()
		m.stage = m.searchReturn
		return m, nil
	case stageTags:
		if m.mode == modeInsert {
			m.composer.SetValue("")
			m.composer.Blur()
			m.mode = modeNormal
			m.infoMessage = "Tag entry canceled."
			return m, nil
		}
		m.closeTags()
		return m, nil
	case stageWorkbench:
		if m.mode == modeInsert {
			m.composer.SetValue("")
			m.composer.Blur()
			m.mode = modeNormal
			m.workbench.editing = ""
			m.infoMessage = "Reflection edit canceled."
			return m, nil
		}
		m.closeWorkbench()
		return m, nil
	case stageUpload:
		m.closeUpload()
		return m, nil
	case stageExport:
		m.closeExport()
		return m, nil
	case stageLibrary:
		if m.library.pendingDelete != "" {
			m.library.pendingDelete = ""
			m.infoMessage = "Delete canceled."
			return m, nil
		}
		return m, tea.Quit
	default:
		return m, tea.Quit
	}
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageLibrary:
		return m.handleLibraryKey(key)
	case stageLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(key)
		return m, cmd
	case stageReader:
		return m.handleReaderKey(key)
	case stageActions:
		return m.handleActionsKey(key)
	case stageResult:
		return m.handleResultKey(key)
	case stageChat:
		return m.handleChatKey(key)
	case stageTags:
		return m.handleTagsKey(key)
	case stageWorkbench:
		return m.handleWorkbenchKey(key)
	case stageSearch:
		return m.handleSearchKey(key)
	case stageUpload:
		return m.handleUploadKey(key)
	case stageExport:
		return m.handleExportKey(key)
	default:
		return m, nil
	}
}

func (m *model) handleSearchKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(key)
	if key.Type != tea.KeyEnter {
		return m, cmd
	}
	value := strings.TrimSpace(m.searchInput.Value())
	m.searchInput.Blur()
	m.stage = m.searchReturn
	if m.searchReturn == stageLibrary {
		m.library.search = value
		if value == "" {
			m.infoMessage = "Search cleared."
		} else {
			m.infoMessage = fmt.Sprintf("Searching the library for %q…", value)
		}
		return m, tea.Batch(cmd, m.spinner.Tick, m.reloadLibrary())
	}
	m.applySearch(value)
	return m, cmd
}

func (m *model) openSearch(returnStage stage) (tea.Model, tea.Cmd) {
	m.searchReturn = returnStage
	if returnStage == stageLibrary {
		m.searchInput.Placeholder = searchLibraryPlaceholder
		m.searchInput.SetValue(m.library.search)
	} else {
		m.searchInput.Placeholder = searchReaderPlaceholder
		m.searchInput.SetValue(m.searchQuery)
	}
	m.stage = stageSearch
	m.searchInput.Focus()
	return m, textinput.Blink
}

func (m *model) toggleHelp() {
	m.helpVisible = !m.helpVisible
	if m.helpVisible {
		m.infoMessage = "Help open. Press ? to hide it."
	} else {
		m.infoMessage = "Help hidden."
	}
	m.markViewportDirty()
}

func (m *model) togglePlan() {
	m.planVisible = !m.planVisible
	if m.planVisible {
		m.infoMessage = "Reading plan open. Press p to hide it."
	} else {
		m.infoMessage = "Reading plan hidden."
	}
}

func (m *model) spinnerBusy() bool {
	if m.stage == stageLoading || m.polling || m.stream != nil {
		return true
	}
	for _, snapshot := range m.jobStates {
		if snapshot.Status == jobStatusRunning {
			return true
		}
	}
	return false
}

// rerenderMarkdown refreshes glamour output after a width change so finished
// answers rewrap to the new terminal size.
func (m *model) rerenderMarkdown() {
	if m.result != nil && !m.result.running && m.result.errText == "" && m.result.raw != "" {
		m.result.rendered = m.renderMarkdown(m.result.raw)
	}
	for i := range m.chat.turns {
		turn := &m.chat.turns[i]
		if turn.role == assist.RoleAssistant && !turn.pending && turn.errText == "" && turn.content != "" {
			turn.rendered = m.renderMarkdown(turn.content)
		}
	}
}
