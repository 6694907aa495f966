package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/logging"
	"github.com/brainovision/campus-assistant/backend/internal/model/chat"
	chatService "github.com/brainovision/campus-assistant/backend/internal/service/chat"
	"github.com/brainovision/campus-assistant/backend/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Bot answers chat turns.
type Bot interface {
	Chat(ctx context.Context, message string) (chat.Response, error)
	ErrorReply() string
}

// Handler serves the widget's chat endpoint and session transcripts.
type Handler struct {
	bot     Bot
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New creates the chat handler.
func New(bot Bot, chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	return &Handler{
		bot:     bot,
		chatSvc: chatSvc,
		logger:  logging.OrNop(logger),
	}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/sessions/{sessionID}/messages", h.handleTranscript)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var payload chat.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Debug("invalid chat body", zap.Error(err))
		utils.RespondJSON(w, http.StatusBadRequest, chat.Response{
			Status:   chat.StatusError,
			Response: h.bot.ErrorReply(),
		})
		return
	}

	h.logger.Info("user message", zap.String("text", payload.Message))

	resp, err := h.bot.Chat(r.Context(), payload.Message)
	if err != nil {
		h.logger.Warn("chat turn aborted", zap.Error(err))
		resp = chat.Response{Status: chat.StatusError, Response: h.bot.ErrorReply()}
	}

	h.logger.Info("bot reply", zap.String("status", resp.Status), zap.Int("length", len(resp.Response)))
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  messages,
	})
}
