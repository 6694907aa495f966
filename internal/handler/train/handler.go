// Package train exposes retraining of the assistant over HTTP.
package train

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/logging"
	"github.com/brainovision/campus-assistant/backend/pkg/utils"
)

const trainedMessage = "Smart chatbot trained successfully! Now understands spelling mistakes."

// Trainer rebuilds the trained model and reports how many intents it learned.
type Trainer interface {
	Train(ctx context.Context) (int, error)
}

type result struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	IntentsCount int    `json:"intents_count,omitempty"`
}

// Handler serves GET /train.
type Handler struct {
	trainer Trainer
	logger  *zap.Logger
}

// New creates the training handler.
func New(trainer Trainer, logger *zap.Logger) *Handler {
	return &Handler{trainer: trainer, logger: logging.OrNop(logger)}
}

// RegisterRoutes mounts the training route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/train", h.handleTrain)
}

func (h *Handler) handleTrain(w http.ResponseWriter, r *http.Request) {
	count, err := h.trainer.Train(r.Context())
	if err != nil {
		h.logger.Error("training failed", zap.Error(err))
		utils.RespondJSON(w, http.StatusInternalServerError, result{Status: "error", Message: err.Error()})
		return
	}

	utils.RespondJSON(w, http.StatusOK, result{
		Status:       "success",
		Message:      trainedMessage,
		IntentsCount: count,
	})
}
