// Package ws serves the chat widget over a WebSocket. Each connection owns
// one widget whose transcript updates are pushed to the browser as events.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/config"
	"github.com/brainovision/campus-assistant/backend/internal/logging"
	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
	chatservice "github.com/brainovision/campus-assistant/backend/internal/service/chat"
	"github.com/brainovision/campus-assistant/backend/internal/widget"
)

const (
	channel = "ws"

	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second

	historyLimit = 10
)

// Event types pushed to the browser.
const (
	EventConnected = "connected"
	EventAppend    = "append"
	EventTyping    = "typing"
	EventScroll    = "scroll"
	EventError     = "error"
)

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// AppendEvent carries a new transcript row.
type AppendEvent struct {
	Message chat.Message `json:"message"`
	HTML    string       `json:"html"`
}

// TypingEvent toggles the typing placeholder.
type TypingEvent struct {
	Visible bool   `json:"visible"`
	HTML    string `json:"html,omitempty"`
}

// ErrorEvent reports a frame the server would not act on. Text carries a
// rejected message back so the client can put it into the input again.
type ErrorEvent struct {
	Message string `json:"message"`
	Text    string `json:"text,omitempty"`
}

// Bot answers one widget turn given the earlier turns of the session.
type Bot interface {
	ChatWithHistory(ctx context.Context, history []chat.Message, message string) (chat.Response, error)
}

// BotFunc adapts a function to Bot.
type BotFunc func(ctx context.Context, history []chat.Message, message string) (chat.Response, error)

// ChatWithHistory calls f.
func (f BotFunc) ChatWithHistory(ctx context.Context, history []chat.Message, message string) (chat.Response, error) {
	return f(ctx, history, message)
}

// Handler upgrades widget connections.
type Handler struct {
	bot        Bot
	chatSvc    *chatservice.Service
	cfg        config.WidgetConfig
	contactURL string
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// New creates the widget WebSocket handler. bot answers each turn and
// chatSvc keeps the per-connection transcript that bot sees as history.
func New(bot Bot, chatSvc *chatservice.Service, cfg config.WidgetConfig, contactURL string, logger *zap.Logger) *Handler {
	return &Handler{
		bot:        bot,
		chatSvc:    chatSvc,
		cfg:        cfg,
		contactURL: contactURL,
		logger:     logging.OrNop(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the widget socket on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/widget", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context(), channel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		h.chatSvc.CloseSession(context.Background(), session.ID)
		return
	}
	defer conn.Close()
	defer h.chatSvc.CloseSession(context.Background(), session.ID)

	logger := h.logger.With(zap.String("session", session.ID))
	logger.Info("widget connected")

	ctx, cancel := context.WithCancel(context.Background())
	var (
		turns   sync.WaitGroup
		pending atomic.Bool
	)
	defer turns.Wait()
	defer cancel()

	c := &connection{conn: conn, sessionID: session.ID, logger: logger}
	transcript := &socketTranscript{ctx: ctx, conn: c, chatSvc: h.chatSvc, logger: logger}
	field := widget.NewField()
	wgt := widget.New(transcript, field, h.sessionReplier(session.ID, logger),
		widget.WithPacer(widget.UniformPacer(h.cfg.MinDelay, h.cfg.MaxDelay)),
		widget.WithContactURL(h.contactURL),
		widget.WithLogger(logger),
	)

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go c.pingLoop(ctx)

	c.send(EventConnected, nil)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			logger.Info("widget disconnected")
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "send", "quick":
		default:
			c.sendError(ErrorEvent{Message: "unsupported message type: " + msg.Type})
			continue
		}

		// The turn is claimed here, before the field is written, so a frame
		// arriving while a reply is pending cannot replace the queued text.
		if !pending.CompareAndSwap(false, true) {
			c.sendError(ErrorEvent{Message: widget.ErrTurnInFlight.Error(), Text: msg.Text})
			continue
		}

		text := msg.Text
		run := wgt.SendMessage
		if msg.Type == "send" {
			field.SetValue(text)
		} else {
			run = func(ctx context.Context) (widget.State, error) {
				return wgt.SendQuickQuestion(ctx, text)
			}
		}

		turns.Add(1)
		go func() {
			defer turns.Done()
			defer pending.Store(false)
			state, err := run(ctx)
			switch {
			case errors.Is(err, widget.ErrTurnInFlight):
				c.sendError(ErrorEvent{Message: err.Error(), Text: text})
			case err != nil:
				logger.Debug("turn ended early", zap.Error(err))
			default:
				logger.Debug("turn finished", zap.Stringer("state", state))
			}
		}()
	}
}

// sessionReplier answers widget turns with the session's earlier messages
// as history. The widget records the user's message before asking for the
// reply, so that trailing entry is left out.
func (h *Handler) sessionReplier(sessionID string, logger *zap.Logger) widget.Replier {
	return widget.ReplierFunc(func(ctx context.Context, message string) (chat.Response, error) {
		history, err := h.chatSvc.Recent(ctx, sessionID, historyLimit+1)
		if err != nil {
			logger.Debug("session history unavailable", zap.Error(err))
			history = nil
		}
		if n := len(history); n > 0 && history[n-1].IsUser() {
			history = history[:n-1]
		}
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
		return h.bot.ChatWithHistory(ctx, history, message)
	})
}

type connection struct {
	conn      *websocket.Conn
	sessionID string
	logger    *zap.Logger
	writeMu   sync.Mutex
}

func (c *connection) send(msgType string, data any) {
	msg := outgoingMessage{
		Type:      msgType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Debug("websocket write failed", zap.String("type", msgType), zap.Error(err))
	}
}

func (c *connection) sendError(ev ErrorEvent) {
	c.send(EventError, ev)
}

func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

// socketTranscript mirrors widget rendering calls to the browser and
// records each message in the session log.
type socketTranscript struct {
	ctx     context.Context
	conn    *connection
	chatSvc *chatservice.Service
	logger  *zap.Logger

	mu     sync.Mutex
	typing bool
}

func (t *socketTranscript) Append(msg chat.Message) {
	msg.SessionID = t.conn.sessionID
	if err := t.chatSvc.SaveMessage(t.ctx, msg); err != nil {
		t.logger.Warn("save message failed", zap.Error(err))
	}
	t.conn.send(EventAppend, AppendEvent{Message: msg, HTML: widget.RenderMessage(msg)})
}

func (t *socketTranscript) ShowTyping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.typing {
		return
	}
	t.typing = true
	t.conn.send(EventTyping, TypingEvent{Visible: true, HTML: widget.RenderTypingIndicator()})
}

func (t *socketTranscript) HideTyping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.typing {
		return
	}
	t.typing = false
	t.conn.send(EventTyping, TypingEvent{Visible: false})
}

func (t *socketTranscript) ScrollToBottom() {
	t.conn.send(EventScroll, nil)
}
