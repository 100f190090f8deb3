package logging

import (
	"errors"
	"log/slog"
	"os"
	"sync"
)

// ScanLog is the per-scan log sink written to <input>/process.log. It always
// records at debug level so external tool output is mirrored in full.
type ScanLog struct {
	path    string
	file    *os.File
	handler slog.Handler

	closeOnce sync.Once
	closeErr  error
}

// OpenScanLog opens path for appending and returns a sink whose handler writes
// in the console layout. Callers must Close the sink on every exit path.
func OpenScanLog(path string) (*ScanLog, error) {
	if path == "" {
		return nil, errors.New("scan log path required")
	}
	file, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	return &ScanLog{
		path:    path,
		file:    file,
		handler: newPrettyHandler(file, slog.LevelDebug, false),
	}, nil
}

// Path returns the file backing the sink.
func (s *ScanLog) Path() string { return s.path }

// Handler returns the slog handler that writes into the scan log.
func (s *ScanLog) Handler() slog.Handler {
	if s == nil {
		return NoopHandler{}
	}
	return s.handler
}

// Attach returns a logger that writes to both base and the scan log.
func (s *ScanLog) Attach(base *slog.Logger) *slog.Logger {
	return TeeLogger(base, s.Handler())
}

// Close flushes and closes the file. It is safe to call more than once.
func (s *ScanLog) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if err := s.file.Sync(); err != nil && !errors.Is(err, os.ErrClosed) {
			s.closeErr = err
		}
		if err := s.file.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}
