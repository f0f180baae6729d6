package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.iglog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ExchangeID: "ex-1", Direction: DirectionOut, Category: CategoryExchange, Action: "GetExternalIPAddress"},
		{Timestamp: time.Now(), ExchangeID: "ex-1", Direction: DirectionIn, Category: CategoryExchange, Action: "GetExternalIPAddress"},
		{Timestamp: time.Now(), ExchangeID: "ex-2", Direction: DirectionIn, Category: CategoryFault, Action: "DeletePortMapping"},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}

	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}

	// Verify order
	if read[0].ExchangeID != "ex-1" || read[0].Direction != DirectionOut {
		t.Errorf("first event = %+v", read[0])
	}
	if read[2].Category != CategoryFault {
		t.Errorf("last event category = %v, want FAULT", read[2].Category)
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.iglog")

	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next on empty file = %v, want io.EOF", err)
	}
}

func TestFilteredReader(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ExchangeID: "ex-1", Direction: DirectionOut, Category: CategoryExchange, Action: "AddPortMapping"},
		{Timestamp: time.Now(), ExchangeID: "ex-2", Direction: DirectionIn, Category: CategoryFault, Action: "AddPortMapping"},
		{Timestamp: time.Now(), ExchangeID: "ex-3", Direction: DirectionOut, Category: CategoryExchange, Action: "DeletePortMapping"},
	}
	path := createTestLogFile(t, events)

	faults := CategoryFault
	reader, err := NewFilteredReader(path, Filter{Category: &faults})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.ExchangeID != "ex-2" {
		t.Errorf("filtered event = %+v, want ex-2", event)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("second Next = %v, want io.EOF", err)
	}
}

func TestFilterByActionAndTime(t *testing.T) {
	base := time.Now()
	events := []Event{
		{Timestamp: base, ExchangeID: "ex-1", Category: CategoryExchange, Action: "AddPortMapping"},
		{Timestamp: base.Add(time.Minute), ExchangeID: "ex-2", Category: CategoryExchange, Action: "AddPortMapping"},
		{Timestamp: base.Add(2 * time.Minute), ExchangeID: "ex-3", Category: CategoryExchange, Action: "GetExternalIPAddress"},
	}
	path := createTestLogFile(t, events)

	start := base.Add(30 * time.Second)
	reader, err := NewFilteredReader(path, Filter{Action: "AddPortMapping", TimeStart: &start})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.ExchangeID != "ex-2" {
		t.Errorf("filtered event = %q, want ex-2", event.ExchangeID)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("second Next = %v, want io.EOF", err)
	}
}
