// Package clipboard reads and writes text on the system clipboard. Access is
// best effort: callers surface failures and carry on.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	// ErrUnavailable is returned when the system clipboard cannot be used.
	ErrUnavailable = errors.New("clipboard unavailable")
	// ErrRead is returned when reading text fails.
	ErrRead = errors.New("failed to read from clipboard")
	// ErrWrite is returned when writing text fails.
	ErrWrite = errors.New("failed to write to clipboard")
)

// Clipboard reads and writes a text string.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// System is the OS clipboard.
type System struct {
	once    sync.Once
	initErr error
}

// NewSystem returns the OS clipboard. Initialization is deferred to first use.
func NewSystem() *System {
	return &System{}
}

func (s *System) init() error {
	s.once.Do(func() {
		if err := clipboard.Init(); err != nil {
			s.initErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	})
	return s.initErr
}

// ReadText returns the clipboard's text content.
func (s *System) ReadText() (string, error) {
	if err := s.init(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	data := clipboard.Read(clipboard.FmtText)
	if data == nil {
		return "", fmt.Errorf("%w: no text content", ErrRead)
	}
	return string(data), nil
}

// WriteText replaces the clipboard content with text.
func (s *System) WriteText(text string) error {
	if err := s.init(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Disabled is a clipboard that always fails, for when it is turned off in
// configuration.
type Disabled struct{}

// ReadText always fails.
func (Disabled) ReadText() (string, error) {
	return "", fmt.Errorf("%w: %w", ErrRead, ErrUnavailable)
}

// WriteText always fails.
func (Disabled) WriteText(string) error {
	return fmt.Errorf("%w: %w", ErrWrite, ErrUnavailable)
}

// Memory is an in-process clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
	set  bool
}

// ReadText returns the last written text.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", fmt.Errorf("%w: no text content", ErrRead)
	}
	return m.text, nil
}

// WriteText stores text.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.set = true
	return nil
}
