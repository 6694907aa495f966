package widget

import "sync"

// Input is the text field the widget reads the user's message from.
type Input interface {
	Value() string
	SetValue(value string)
}

// Field is a goroutine-safe in-memory Input.
type Field struct {
	mu    sync.Mutex
	value string
}

// NewField returns an empty input field.
func NewField() *Field {
	return &Field{}
}

func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *Field) SetValue(value string) {
	f.mu.Lock()
	f.value = value
	f.mu.Unlock()
}
