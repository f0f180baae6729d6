package discovery

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// stutterReader yields its content in fixed-size pieces, simulating a
// device that dribbles out the description document.
type stutterReader struct {
	data  string
	piece int
	off   int
}

func (r *stutterReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	end := r.off + r.piece
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.off:end])
	r.off += n
	return n, nil
}

func TestReadUntilParsed(t *testing.T) {
	doc := `<?xml version="1.0"?><root><device>router</device></root>`
	r := &stutterReader{data: doc, piece: 7}

	parse := func(buf []byte) bool {
		var v struct {
			XMLName xml.Name `xml:"root"`
		}
		return xml.Unmarshal(buf, &v) == nil
	}

	slept := 0
	buf, err := ReadUntilParsed(r, parse, ReadConfig{
		ChunkSize: 16,
		Sleep:     func(time.Duration) { slept++ },
	})
	if err != nil {
		t.Fatalf("ReadUntilParsed failed: %v", err)
	}
	if string(buf) != doc {
		t.Errorf("buffer = %q", buf)
	}
	if slept == 0 {
		t.Error("expected sleeps between partial reads")
	}
}

func TestReadUntilParsedBudgetExhausted(t *testing.T) {
	// A reader that never finishes the document: parse never succeeds,
	// the loop must stop at the attempt budget.
	r := &stutterReader{data: strings.Repeat("<open>", 1000), piece: 6}

	attempts := 0
	parse := func([]byte) bool { attempts++; return false }

	var sleeps []time.Duration
	_, err := ReadUntilParsed(r, parse, ReadConfig{
		Attempts: 5,
		Interval: 10 * time.Millisecond,
		Sleep:    func(d time.Duration) { sleeps = append(sleeps, d) },
	})
	if !errors.Is(err, ErrNeverParsed) {
		t.Fatalf("err = %v, want ErrNeverParsed", err)
	}
	if attempts != 5 {
		t.Errorf("parse attempts = %d, want 5", attempts)
	}
	for _, d := range sleeps {
		if d != 10*time.Millisecond {
			t.Errorf("sleep = %v, want fixed 10ms interval", d)
		}
	}
}

func TestReadUntilParsedEOFBeforeParse(t *testing.T) {
	r := strings.NewReader("<truncated")
	_, err := ReadUntilParsed(r, func([]byte) bool { return false }, ReadConfig{
		Sleep: func(time.Duration) {},
	})
	if !errors.Is(err, ErrNeverParsed) {
		t.Errorf("err = %v, want ErrNeverParsed", err)
	}
}

func TestReadUntilParsedImmediate(t *testing.T) {
	// A well-behaved device that delivers everything in one read must
	// not pay any sleep.
	r := strings.NewReader("<root/>")
	slept := false
	buf, err := ReadUntilParsed(r, func(buf []byte) bool {
		return strings.Contains(string(buf), "/>")
	}, ReadConfig{Sleep: func(time.Duration) { slept = true }})
	if err != nil {
		t.Fatalf("ReadUntilParsed failed: %v", err)
	}
	if string(buf) != "<root/>" {
		t.Errorf("buffer = %q", buf)
	}
	if slept {
		t.Error("slept despite immediate parse")
	}
}
