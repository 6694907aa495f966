package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
)

type (
	appendMsg struct{ message chat.Message }
	typingMsg struct{ visible bool }
	scrollMsg struct{}
)

// Sink is a widget transcript that forwards every rendering call to a
// running program. Calls made before Attach are dropped.
type Sink struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	typing bool
}

// NewSink returns a detached sink.
func NewSink() *Sink {
	return &Sink{}
}

// Attach routes events to send, usually (*tea.Program).Send.
func (s *Sink) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *Sink) Append(msg chat.Message) {
	s.emit(appendMsg{message: msg})
}

func (s *Sink) ShowTyping() {
	if s.setTyping(true) {
		s.emit(typingMsg{visible: true})
	}
}

func (s *Sink) HideTyping() {
	if s.setTyping(false) {
		s.emit(typingMsg{visible: false})
	}
}

func (s *Sink) ScrollToBottom() {
	s.emit(scrollMsg{})
}

// setTyping reports whether the indicator state changed.
func (s *Sink) setTyping(visible bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typing == visible {
		return false
	}
	s.typing = visible
	return true
}

func (s *Sink) emit(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(msg)
	}
}
