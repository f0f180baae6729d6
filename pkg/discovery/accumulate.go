package discovery

import (
	"fmt"
	"io"
	"time"
)

// Read-budget defaults. Some devices omit Content-Length, so the reader
// never trusts an expected byte count: it accumulates chunks and re-tries
// the parse until it succeeds or the attempt budget runs out (~500ms).
const (
	// DefaultReadAttempts bounds the accumulate-parse loop.
	DefaultReadAttempts = 50

	// DefaultReadInterval is the pause between attempts.
	DefaultReadInterval = 10 * time.Millisecond

	// DefaultChunkSize is the per-attempt read size.
	DefaultChunkSize = 2048
)

// ReadConfig tunes ReadUntilParsed. The zero value selects the defaults;
// Sleep is injectable so tests run without real delays.
type ReadConfig struct {
	Attempts  int
	Interval  time.Duration
	ChunkSize int
	Sleep     func(time.Duration)
}

func (c ReadConfig) withDefaults() ReadConfig {
	if c.Attempts <= 0 {
		c.Attempts = DefaultReadAttempts
	}
	if c.Interval <= 0 {
		c.Interval = DefaultReadInterval
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	return c
}

// ReadUntilParsed reads r chunk by chunk, calling parse on the
// accumulated buffer after every chunk. It returns the buffer once parse
// succeeds. If the stream ends or the attempt budget is exhausted before
// the buffer parses, it returns ErrNeverParsed.
func ReadUntilParsed(r io.Reader, parse func([]byte) bool, cfg ReadConfig) ([]byte, error) {
	cfg = cfg.withDefaults()

	buf := make([]byte, 0, cfg.ChunkSize)
	chunk := make([]byte, cfg.ChunkSize)

	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		n, readErr := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if parse(buf) {
			return buf, nil
		}
		if readErr != nil {
			if readErr == io.EOF {
				return buf, fmt.Errorf("%w: stream ended after %d bytes", ErrNeverParsed, len(buf))
			}
			return buf, readErr
		}
		cfg.Sleep(cfg.Interval)
	}
	return buf, fmt.Errorf("%w: %d attempts", ErrNeverParsed, cfg.Attempts)
}
