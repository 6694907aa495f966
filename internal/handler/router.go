package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/config"
	"github.com/brainovision/campus-assistant/backend/internal/handler/chat"
	"github.com/brainovision/campus-assistant/backend/internal/handler/train"
	"github.com/brainovision/campus-assistant/backend/internal/handler/ws"
	"github.com/brainovision/campus-assistant/backend/internal/logging"
	middlewarePkg "github.com/brainovision/campus-assistant/backend/internal/middleware"
	botService "github.com/brainovision/campus-assistant/backend/internal/service/bot"
	chatService "github.com/brainovision/campus-assistant/backend/internal/service/chat"
	"github.com/brainovision/campus-assistant/backend/web"
)

// Dependencies are the services the HTTP layer is wired to.
type Dependencies struct {
	Config  *config.Config
	Bot     *botService.Service
	ChatSvc *chatService.Service
	Logger  *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	logger := logging.OrNop(deps.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(middlewarePkg.CORS(deps.Config.Server.AllowedOrigins))

	chatHandler := chat.New(deps.Bot, deps.ChatSvc, logger.Named("chat"))
	trainHandler := train.New(deps.Bot, logger.Named("train"))
	widgetHandler := ws.New(deps.Bot, deps.ChatSvc, deps.Config.Widget, deps.Config.Site.URL, logger.Named("ws"))

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})
	trainHandler.RegisterRoutes(r)
	widgetHandler.RegisterRoutes(r)

	r.Handle("/*", web.Handler())

	return r
}
