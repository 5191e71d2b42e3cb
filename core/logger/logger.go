package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one event in the newline delimited JSON run log.
// Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	RunID           string `json:"run_id"`

	Step   *Step   `json:"step,omitempty"`
	Report *Report `json:"report,omitempty"`
}

// Step records a finished external command.
type Step struct {
	// Name identifies the step: "configure", "build", or "smoke_test".
	Name           string   `json:"name"`
	Command        []string `json:"command"`
	ExitCode       int      `json:"exit_code"`
	DurationMicros int64    `json:"duration_micros"`
}

// Report records the smoke-test verdict.
type Report struct {
	Working bool   `json:"working"`
	Message string `json:"message"`
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures build and smoke-test events.
type Logger struct {
	Record LogRecorder
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewRun creates a logger with an attached run ID.
func (l *Logger) NewRun() *RunLogger {
	return &RunLogger{Logger: l, runID: uuid.NewString()}
}

// RunLogger logs events with a shared run ID.
type RunLogger struct {
	*Logger
	runID string
}

// RunID is the identifier attached to every entry this logger records.
func (l *RunLogger) RunID() string {
	return l.runID
}

func (l *RunLogger) record(le *LogEntry) error {
	le.TimestampMicros = time.Now().UnixMicro()
	le.RunID = l.runID
	return l.Record(le)
}

// RecordStep logs a finished external command.
func (l *RunLogger) RecordStep(name string, command []string, exitCode int, duration time.Duration) error {
	return l.record(&LogEntry{Step: &Step{
		Name:           name,
		Command:        command,
		ExitCode:       exitCode,
		DurationMicros: duration.Microseconds(),
	}})
}

// RecordReport logs the smoke-test verdict.
func (l *RunLogger) RecordReport(working bool, message string) error {
	return l.record(&LogEntry{Report: &Report{
		Working: working,
		Message: message,
	}})
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}
		handler(&logEntry)
	}
	return nil
}
