package log

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingLogger collects events for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestNoopLoggerDiscards(t *testing.T) {
	var l NoopLogger
	l.Log(Event{Category: CategoryError}) // must not panic
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := NewMultiLogger(a, b)

	m.Log(Event{Timestamp: time.Now(), ExchangeID: "ex-1", Category: CategoryExchange})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("events = %d/%d, want 1/1", len(a.events), len(b.events))
	}
	if a.events[0].ExchangeID != "ex-1" {
		t.Errorf("ExchangeID = %q", a.events[0].ExchangeID)
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adapter := NewSlogAdapter(logger)
	adapter.Log(Event{
		Timestamp:  time.Now(),
		ExchangeID: "ex-9",
		Direction:  DirectionIn,
		Category:   CategoryFault,
		Action:     "AddPortMapping",
		Fault:      &FaultEvent{Code: 718, Description: "ConflictInMappingEntry"},
	})

	out := buf.String()
	for _, want := range []string{"direction=IN", "category=FAULT", "action=AddPortMapping", "fault_code=718"} {
		if !strings.Contains(out, want) {
			t.Errorf("slog output missing %q: %s", want, out)
		}
	}
}
