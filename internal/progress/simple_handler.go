package progress

import (
	"fmt"
	"io"
	"time"
)

// SimpleHandler outputs events as simple lines
type SimpleHandler struct {
	writer io.Writer
}

func NewSimpleHandler(writer io.Writer) *SimpleHandler {
	return &SimpleHandler{writer: writer}
}

func (h *SimpleHandler) Handle(event Event) {
	switch event.Type {
	case EventScanStart:
		fmt.Fprintf(h.writer, "[SCAN] Starting: %s\n", event.Path)
		if event.Info != "" {
			fmt.Fprintf(h.writer, "[SCAN] Excluding: %s\n", event.Info)
		}

	case EventScanComplete:
		fmt.Fprintf(h.writer, "[SCAN] Completed: %d files in %.1fs\n",
			event.Count, event.Duration.Seconds())

	case EventStageStart:
		fmt.Fprintf(h.writer, "[STAGE] %s: started\n", event.Stage)

	case EventStageComplete:
		fmt.Fprintf(h.writer, "[STAGE] %s: %d results in %s\n",
			event.Stage, event.Count, timingLabel(event.Duration))

	case EventSkipped:
		fmt.Fprintf(h.writer, "[SKIP] %s (%s)\n", event.Path, event.Reason)

	case EventFileWriting:
		fmt.Fprintf(h.writer, "[OUT]  Writing report to: %s\n", event.Path)

	case EventFileWritten:
		fmt.Fprintf(h.writer, "[OUT]  Report written: %s\n", event.Path)

	case EventInfo:
		fmt.Fprintf(h.writer, "[INFO] %s\n", event.Info)
	}
}

func timingLabel(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
