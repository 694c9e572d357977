// Package logtest implements support for testing Loggers.
package logtest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/permutationlock/catacrawl/server/log"
)

// DiscardLogger is a Logger that throws away everything written to it.
var DiscardLogger = new(discardLogger)

// discardLogger is simpler than a log.Logger built on io.Discard.
type discardLogger struct{}

var _ log.Logger = DiscardLogger

// Printf implements the log.Logger interface
func (discardLogger) Printf(format string, v ...interface{}) {
	// NOOP
}

// Logger is a logger that records what is written so tests can read it back.
type Logger struct {
	mu  sync.RWMutex
	buf bytes.Buffer
}

var _ log.Logger = new(Logger)

// Printf implements the log.Logger interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(&l.buf, format, v...)
	l.buf.WriteByte('\n')
}

// String returns the recorded text.
func (l *Logger) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.String()
}

// Empty returns whether anything has been recorded.
func (l *Logger) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buf.Len() == 0
}

// Reset clears the recorded text.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Reset()
}
