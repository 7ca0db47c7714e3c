package progress

import (
	"os"
	"strings"
	"sync"
	"time"
)

// EventType represents the type of progress event
type EventType int

const (
	EventScanStart EventType = iota
	EventScanComplete
	EventStageStart
	EventStageComplete
	EventSkipped
	EventFileWriting
	EventFileWritten
	EventInfo
)

// Event represents something that happened during scanning
type Event struct {
	Type     EventType
	Path     string
	Stage    string
	Info     string
	Reason   string
	Count    int
	Duration time.Duration
}

// Handler processes events and produces output
type Handler interface {
	Handle(event Event)
}

// Progress is the centralized verbose system. Report is safe for
// concurrent use by parallel stages.
type Progress struct {
	mu      sync.Mutex
	enabled bool
	handler Handler
}

// New creates a new progress reporter
func New(enabled bool, handler Handler) *Progress {
	if handler == nil {
		handler = NewSimpleHandler(os.Stderr)
	}
	return &Progress{
		enabled: enabled,
		handler: handler,
	}
}

// Disabled returns a reporter that drops every event
func Disabled() *Progress {
	return New(false, NewNullHandler())
}

// Report sends an event to the handler (only if enabled)
func (p *Progress) Report(event Event) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler.Handle(event)
}

func (p *Progress) ScanStart(path string, excludePatterns []string) {
	p.Report(Event{
		Type: EventScanStart,
		Path: path,
		Info: strings.Join(excludePatterns, ", "),
	})
}

func (p *Progress) ScanComplete(files int, duration time.Duration) {
	p.Report(Event{
		Type:     EventScanComplete,
		Count:    files,
		Duration: duration,
	})
}

func (p *Progress) StageStart(stage string) {
	p.Report(Event{
		Type:  EventStageStart,
		Stage: stage,
	})
}

func (p *Progress) StageComplete(stage string, count int, duration time.Duration) {
	p.Report(Event{
		Type:     EventStageComplete,
		Stage:    stage,
		Count:    count,
		Duration: duration,
	})
}

func (p *Progress) Skipped(path, reason string) {
	p.Report(Event{
		Type:   EventSkipped,
		Path:   path,
		Reason: reason,
	})
}

func (p *Progress) FileWriting(path string) {
	p.Report(Event{
		Type: EventFileWriting,
		Path: path,
	})
}

func (p *Progress) FileWritten(path string) {
	p.Report(Event{
		Type: EventFileWritten,
		Path: path,
	})
}

func (p *Progress) Info(message string) {
	p.Report(Event{
		Type: EventInfo,
		Info: message,
	})
}

// NullHandler discards all events (for disabled verbose mode)
type NullHandler struct{}

func NewNullHandler() *NullHandler {
	return &NullHandler{}
}

func (h *NullHandler) Handle(event Event) {}
