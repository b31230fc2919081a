package spies

import (
	"sync"
)

// LoggerSpy captures log calls for testing. It implements the
// eventstore.Logger interface.
type LoggerSpy struct {
	records []LogRecord
	mu      sync.Mutex
}

// LogRecord represents one captured log call.
type LogRecord struct {
	Level string
	Msg   string
	Args  []any
}

// NewLoggerSpy creates a new LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record("DEBUG", msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record("INFO", msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record("WARN", msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record("ERROR", msg, args) }

func (s *LoggerSpy) record(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	argsCopy := make([]any, len(args))
	copy(argsCopy, args)

	s.records = append(s.records, LogRecord{Level: level, Msg: msg, Args: argsCopy})
}

// Records returns a copy of all captured log records.
func (s *LoggerSpy) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]LogRecord, len(s.records))
	copy(records, s.records)

	return records
}

// HasRecord checks if a log call with the given level and message was captured.
func (s *LoggerSpy) HasRecord(level, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Level == level && record.Msg == msg {
			return true
		}
	}

	return false
}

// CountRecords returns how many log calls with the given level were captured.
func (s *LoggerSpy) CountRecords(level string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.records {
		if record.Level == level {
			count++
		}
	}

	return count
}

// Reset clears all captured log records.
func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}
