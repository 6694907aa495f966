// Package widget implements the chat widget: message formatting, the
// transcript it renders into and the send/receive cycle against the chat
// endpoint.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
)

// ErrTurnInFlight is returned when a send starts while a previous one is pending.
var ErrTurnInFlight = errors.New("a message is already being sent")

// DefaultContactURL is where the fallback apologies send the user.
const DefaultContactURL = "https://www.brainovision.in"

// Replier delivers a user message to the chat backend.
type Replier interface {
	Chat(ctx context.Context, message string) (chat.Response, error)
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, message string) (chat.Response, error)

func (f ReplierFunc) Chat(ctx context.Context, message string) (chat.Response, error) {
	return f(ctx, message)
}

// State is the position of the widget within a send cycle.
type State int32

const (
	StateIdle State = iota
	StateUserMessageShown
	StateTyping
	StateBotMessageShown
	StateErrorMessageShown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUserMessageShown:
		return "user_message_shown"
	case StateTyping:
		return "typing"
	case StateBotMessageShown:
		return "bot_message_shown"
	case StateErrorMessageShown:
		return "error_message_shown"
	default:
		return "unknown"
	}
}

// Option customises a Widget.
type Option func(*Widget)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(w *Widget) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithPacer replaces the reply delay source.
func WithPacer(pacer Pacer) Option {
	return func(w *Widget) {
		if pacer != nil {
			w.pacer = pacer
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Widget) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithContactURL changes the link named in the fallback apologies.
func WithContactURL(url string) Option {
	return func(w *Widget) {
		if url = strings.TrimSpace(url); url != "" {
			w.contactURL = url
		}
	}
}

// Widget drives one chat panel.
type Widget struct {
	transcript Transcript
	input      Input
	replier    Replier
	clock      Clock
	pacer      Pacer
	logger     *zap.Logger
	contactURL string

	inFlight atomic.Bool
	state    atomic.Int32
}

// New wires a widget to its transcript, input field and backend.
func New(transcript Transcript, input Input, replier Replier, opts ...Option) *Widget {
	w := &Widget{
		transcript: transcript,
		input:      input,
		replier:    replier,
		clock:      SystemClock(),
		pacer:      UniformPacer(DefaultMinDelay, DefaultMaxDelay),
		logger:     zap.NewNop(),
		contactURL: DefaultContactURL,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current send-cycle state.
func (w *Widget) State() State {
	return State(w.state.Load())
}

// Busy reports whether a send cycle is pending.
func (w *Widget) Busy() bool {
	return w.inFlight.Load()
}

// AppendMessage renders text as a new row at the end of the transcript and
// scrolls it into view.
func (w *Widget) AppendMessage(text string, isUser bool) chat.Message {
	author := chat.AuthorBot
	if isUser {
		author = chat.AuthorUser
	}

	now := w.clock.Now()
	msg := chat.Message{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		HTML:      FormatMessage(text),
		Timestamp: FormatTimestamp(now),
		CreatedAt: now.UTC(),
	}

	// The placeholder never sits above a newer message.
	w.transcript.HideTyping()
	w.transcript.Append(msg)
	w.transcript.ScrollToBottom()
	return msg
}

// ShowTypingIndicator displays the single "typing" placeholder.
func (w *Widget) ShowTypingIndicator() {
	w.transcript.ShowTyping()
	w.transcript.ScrollToBottom()
}

// HideTypingIndicator removes the placeholder if present.
func (w *Widget) HideTypingIndicator() {
	w.transcript.HideTyping()
}

// SendMessage runs one send cycle with the current input and returns the
// terminal state it reached. Empty input is ignored. Server and transport
// failures are reported in the transcript, not as errors; the returned
// error is ErrTurnInFlight or the context error when ctx ends during the
// reply delay.
func (w *Widget) SendMessage(ctx context.Context) (State, error) {
	text := strings.TrimSpace(w.input.Value())
	if text == "" {
		return StateIdle, nil
	}

	if !w.inFlight.CompareAndSwap(false, true) {
		return w.State(), ErrTurnInFlight
	}
	defer func() {
		w.setState(StateIdle)
		w.inFlight.Store(false)
	}()

	w.AppendMessage(text, true)
	w.input.SetValue("")
	w.setState(StateUserMessageShown)

	w.ShowTypingIndicator()
	w.setState(StateTyping)

	resp, err := w.replier.Chat(ctx, text)
	if err != nil {
		w.logger.Debug("chat turn failed", zap.String("kind", "transport"))
		return w.fail(w.transportFallback()), nil
	}
	if !resp.OK() {
		w.logger.Debug("chat turn failed", zap.String("kind", "server"), zap.String("status", resp.Status))
		return w.fail(w.serverFallback()), nil
	}

	w.HideTypingIndicator()

	delay := w.pacer()
	if err := w.clock.Sleep(ctx, delay); err != nil {
		w.logger.Debug("reply dropped", zap.Duration("delay", delay), zap.Error(err))
		return StateIdle, err
	}

	w.AppendMessage(resp.Response, false)
	w.setState(StateBotMessageShown)
	return StateBotMessageShown, nil
}

// SendQuickQuestion fills the input with text and sends it.
func (w *Widget) SendQuickQuestion(ctx context.Context, text string) (State, error) {
	w.input.SetValue(text)
	return w.SendMessage(ctx)
}

func (w *Widget) fail(apology string) State {
	w.HideTypingIndicator()
	w.AppendMessage(apology, false)
	w.setState(StateErrorMessageShown)
	return StateErrorMessageShown
}

func (w *Widget) serverFallback() string {
	return "I apologize, but I encountered an error. Please try again or visit " + w.contactURL + " directly."
}

func (w *Widget) transportFallback() string {
	return "I apologize, but I am unable to process your request at this time. Please visit " + w.contactURL + " for direct assistance."
}

func (w *Widget) setState(s State) {
	w.state.Store(int32(s))
}
