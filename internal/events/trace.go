package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink consumes events from the router.
type Sink interface {
	Start(ctx context.Context, events <-chan Event) error
	Stop() error
}

// TraceSink writes events to a JSON lines file for debugging.
type TraceSink struct {
	path    string
	file    *os.File
	encoder *json.Encoder
	errOut  io.Writer
	mu      sync.Mutex
	done    chan struct{}
	now     func() time.Time
}

// NewTraceSink creates a TraceSink that writes to path.
func NewTraceSink(path string) *TraceSink {
	return &TraceSink{
		path:   path,
		errOut: os.Stderr,
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// Start opens the trace file and begins processing events.
// It runs until the context is canceled or the events channel is closed.
func (s *TraceSink) Start(ctx context.Context, events <-chan Event) error {
	if err := s.openFile(); err != nil {
		return err
	}

	go s.run(ctx, events)
	return nil
}

func (s *TraceSink) openFile() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create trace directory: %w", err)
	}

	if err := s.rotateExisting(); err != nil {
		return err
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open trace file: %w", err)
	}

	s.mu.Lock()
	s.file = file
	s.encoder = json.NewEncoder(file)
	s.mu.Unlock()

	return nil
}

// rotateExisting renames a non-empty trace from a previous process with a
// timestamp suffix so every process starts a fresh file.
func (s *TraceSink) rotateExisting() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat trace file: %w", err)
	}

	if info.Size() == 0 {
		return nil
	}

	bakPath := fmt.Sprintf("%s.%s.bak", s.path, s.now().Format("2006-01-02T15-04-05"))
	if err := os.Rename(s.path, bakPath); err != nil {
		return fmt.Errorf("rotate trace file: %w", err)
	}
	return nil
}

func (s *TraceSink) run(ctx context.Context, events <-chan Event) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.write(event)
		}
	}
}

// traceRecord flattens an event with its formatted summary.
type traceRecord struct {
	Event   Event  `json:"event"`
	Summary string `json:"summary,omitempty"`
}

func (s *TraceSink) write(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encoder == nil {
		return
	}

	if err := s.encoder.Encode(traceRecord{Event: event, Summary: Format(event)}); err != nil {
		fmt.Fprintf(s.errOut, "trace sink: failed to write event: %v\n", err)
	}
}

// Stop waits for the event stream to end and closes the trace file.
func (s *TraceSink) Stop() error {
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		s.encoder = nil
		return err
	}
	return nil
}

// Path returns the trace file path.
func (s *TraceSink) Path() string {
	return s.path
}
