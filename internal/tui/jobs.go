package tui

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type jobKind string

type jobStatus string

const (
	jobKindLibrary   jobKind = "library"
	jobKindOpen      jobKind = "open"
	jobKindDelete    jobKind = "delete"
	jobKindUpload    jobKind = "upload"
	jobKindStatus    jobKind = "status"
	jobKindAnalysis  jobKind = "analysis"
	jobKindTags      jobKind = "tags"
	jobKindClassify  jobKind = "classify"
	jobKindWorkbench jobKind = "workbench"
	jobKindCapture   jobKind = "capture"
	jobKindExport    jobKind = "export"
	jobKindFallback  jobKind = "fallback"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter int64
	log     zerolog.Logger
}

func newJobBus(log zerolog.Logger) *jobBus {
	return &jobBus{log: log}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		ctx := context.Background()
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		b.log.Debug().
			Str("job", id).
			Str("status", string(snapshot.Status)).
			Dur("duration", snapshot.Duration).
			Err(err).
			Msg("job finished")
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

// recordJob keeps the latest snapshot per kind so the status bar can show
// what is in flight. Successful completions clear their badge.
func (m *model) recordJob(snapshot jobSnapshot) {
	if m.jobStates == nil {
		m.jobStates = map[jobKind]jobSnapshot{}
	}
	if snapshot.Status == jobStatusSucceeded {
		delete(m.jobStates, snapshot.Kind)
		return
	}
	m.jobStates[snapshot.Kind] = snapshot
}

func (m *model) jobStatusBadges() []string {
	if len(m.jobStates) == 0 {
		return nil
	}
	kinds := make([]jobKind, 0, len(m.jobStates))
	for kind := range m.jobStates {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		switch m.jobStates[kind].Status {
		case jobStatusRunning:
			badges = append(badges, fmt.Sprintf("%s…", kind))
		case jobStatusFailed:
			badges = append(badges, fmt.Sprintf("%s ✗", kind))
		}
	}
	return badges
}
