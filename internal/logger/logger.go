// Package logger provides leveled logging for stocksync runs.
// Info, Warn and Error lines are always written. Debug lines and section
// headers are written only when verbose mode is enabled via --verbose.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	verbose bool
	log     = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&lineFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(log.Out, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	log.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	log.Errorf(format, args...)
}

// Fields are key/value pairs appended to a log line.
type Fields = logrus.Fields

// Entry is a logger carrying fields.
type Entry struct {
	entry *logrus.Entry
}

// WithFields returns an entry that appends fields to every line.
func WithFields(fields Fields) *Entry {
	return &Entry{entry: log.WithFields(fields)}
}

// WithFields returns a copy of e with additional fields.
func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{entry: e.entry.WithFields(fields)}
}

// Debug prints a message with fields if verbose mode is enabled.
func (e *Entry) Debug(format string, args ...any) { e.entry.Debugf(format, args...) }

// Info prints an informational message with fields.
func (e *Entry) Info(format string, args ...any) { e.entry.Infof(format, args...) }

// Warn prints a warning message with fields.
func (e *Entry) Warn(format string, args ...any) { e.entry.Warnf(format, args...) }

// Error prints an error message with fields.
func (e *Entry) Error(format string, args ...any) { e.entry.Errorf(format, args...) }

// lineFormatter renders "[LEVEL] message key=value ...".
type lineFormatter struct{}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	level := strings.ToUpper(e.Level.String())
	if e.Level == logrus.WarnLevel {
		level = "WARN"
	}
	fmt.Fprintf(&b, "[%s] %s", level, e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
