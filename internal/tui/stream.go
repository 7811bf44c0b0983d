package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/asengupta/deepread/internal/assist"
)

// startStream launches a streaming analysis request and returns the command
// waiting on its first delta. Events flow handler → channel → wait cmd →
// Update, and the wait command re-arms itself until a done or error event.
func (m *model) startStream(target streamTarget, req assist.Request) tea.Cmd {
	m.cancelStream()
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan streamEvent, streamBufferSize)
	id := uuid.NewString()
	m.stream = &streamState{id: id, target: target, request: req, cancel: cancel}
	client := m.config.Assist
	log := m.config.Logger
	go func() {
		defer close(updates)
		err := client.Stream(ctx, req, func(delta assist.Delta) error {
			select {
			case updates <- streamEvent{content: delta.Content, done: delta.Done}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			log.Debug().Err(err).Str("stream", id).Msg("stream ended")
			select {
			case updates <- streamEvent{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return tea.Batch(m.spinner.Tick, waitForStream(id, updates))
}

func waitForStream(id string, updates chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-updates
		if !ok {
			return streamClosedMsg{streamID: id}
		}
		return streamDeltaMsg{streamID: id, event: event, updates: updates}
	}
}

// cancelStream tears down the in-flight stream, if any. Late events from the
// old stream carry a stale id and are dropped by the guards below.
func (m *model) cancelStream() {
	if m.stream == nil {
		return
	}
	m.stream.cancel()
	m.stream = nil
}

func (m *model) handleStreamDelta(msg streamDeltaMsg) tea.Cmd {
	if m.stream == nil || m.stream.id != msg.streamID {
		return nil
	}
	event := msg.event
	if event.err != nil {
		if errors.Is(event.err, context.Canceled) {
			return nil
		}
		return m.streamFallback(event.err)
	}
	if event.content != "" {
		m.appendStreamContent(event.content)
	}
	if event.done {
		m.finishStream()
		return nil
	}
	return waitForStream(msg.streamID, msg.updates)
}

func (m *model) handleStreamClosed(msg streamClosedMsg) tea.Cmd {
	if m.stream == nil || m.stream.id != msg.streamID {
		return nil
	}
	return m.streamFallback(assist.ErrStreamTruncated)
}

// streamFallback retries the request once through the non-streaming endpoint.
// The second failure is final and surfaces inline.
func (m *model) streamFallback(cause error) tea.Cmd {
	st := m.stream
	if st == nil {
		return nil
	}
	if st.fallbackTried {
		m.failStream(cause)
		return nil
	}
	st.fallbackTried = true
	st.cancel()
	m.noteStreamRetry()
	client := m.config.Assist
	req := st.request
	id := st.id
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindFallback, func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		content, err := client.Analyze(ctx, req)
		return fallbackResultMsg{streamID: id, content: content, err: err}, err
	}))
}

func (m *model) handleFallbackResult(msg fallbackResultMsg) tea.Cmd {
	if m.stream == nil || m.stream.id != msg.streamID {
		return nil
	}
	if msg.err != nil {
		m.failStream(msg.err)
		return nil
	}
	m.replaceStreamContent(msg.content)
	m.finishStream()
	return nil
}

func (m *model) appendStreamContent(content string) {
	switch m.stream.target {
	case streamTargetResult:
		m.appendResultContent(content)
	case streamTargetChat:
		m.appendChatContent(content)
	}
}

// replaceStreamContent swaps partial output for the fallback's full answer.
func (m *model) replaceStreamContent(content string) {
	switch m.stream.target {
	case streamTargetResult:
		m.replaceResultContent(content)
	case streamTargetChat:
		m.replaceChatContent(content)
	}
}

func (m *model) finishStream() {
	target := m.stream.target
	m.stream = nil
	switch target {
	case streamTargetResult:
		m.finishResult()
	case streamTargetChat:
		m.finishChatTurn()
	}
}

func (m *model) failStream(cause error) {
	target := m.stream.target
	m.stream = nil
	switch target {
	case streamTargetResult:
		m.failResult(cause)
	case streamTargetChat:
		m.failChatTurn(cause)
	}
}

func (m *model) noteStreamRetry() {
	m.infoMessage = "Stream interrupted. Retrying without streaming…"
}
