package widget

import (
	"strings"
	"sync"

	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
)

// Transcript is the view the widget renders into. Implementations own the
// visible rows; the widget only appends messages, toggles the typing
// placeholder and asks for the newest row to be scrolled into view.
type Transcript interface {
	Append(msg chat.Message)
	ShowTyping()
	// HideTyping must be a no-op when no indicator is shown.
	HideTyping()
	ScrollToBottom()
}

type node struct {
	id  string
	msg *chat.Message
}

// MemoryTranscript keeps rendered rows in memory. It backs the HTML view of
// a widget session.
type MemoryTranscript struct {
	mu       sync.RWMutex
	nodes    []node
	atBottom bool
}

// NewMemoryTranscript returns an empty transcript.
func NewMemoryTranscript() *MemoryTranscript {
	return &MemoryTranscript{atBottom: true}
}

func (t *MemoryTranscript) Append(msg chat.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := msg
	t.nodes = append(t.nodes, node{id: msg.ID, msg: &m})
	t.atBottom = false
}

func (t *MemoryTranscript) ShowTyping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.typingIndex() >= 0 {
		return
	}
	t.nodes = append(t.nodes, node{id: TypingIndicatorID})
	t.atBottom = false
}

func (t *MemoryTranscript) HideTyping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.typingIndex()
	if idx < 0 {
		return
	}
	t.nodes = append(t.nodes[:idx], t.nodes[idx+1:]...)
}

func (t *MemoryTranscript) ScrollToBottom() {
	t.mu.Lock()
	t.atBottom = true
	t.mu.Unlock()
}

// TypingVisible reports whether the typing placeholder is present.
func (t *MemoryTranscript) TypingVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.typingIndex() >= 0
}

// AtBottom reports whether the newest row has been scrolled into view.
func (t *MemoryTranscript) AtBottom() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.atBottom
}

// Messages returns the appended messages in order.
func (t *MemoryTranscript) Messages() []chat.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]chat.Message, 0, len(t.nodes))
	for _, n := range t.nodes {
		if n.msg != nil {
			out = append(out, *n.msg)
		}
	}
	return out
}

// Render returns the transcript container markup.
func (t *MemoryTranscript) Render() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var b strings.Builder
	b.WriteString(`<div id="` + TranscriptID + `">`)
	for _, n := range t.nodes {
		if n.msg == nil {
			b.WriteString(RenderTypingIndicator())
			continue
		}
		b.WriteString(RenderMessage(*n.msg))
	}
	b.WriteString(`</div>`)
	return b.String()
}

func (t *MemoryTranscript) typingIndex() int {
	for i, n := range t.nodes {
		if n.msg == nil && n.id == TypingIndicatorID {
			return i
		}
	}
	return -1
}
