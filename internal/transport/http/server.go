package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ratechat-server/internal/config"
	"github.com/vovakirdan/ratechat-server/internal/core"
	"github.com/vovakirdan/ratechat-server/internal/service/exchange"
	"github.com/vovakirdan/ratechat-server/internal/store"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Registry   *core.Registry
	Dispatcher *core.Dispatcher
	Exchange   *exchange.Service
	Journal    store.ExchangeLog
}

// NewServer builds an HTTP server with the chat socket, health check and REST routes.
func NewServer(deps Deps, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	ws := NewWSHandler(deps.Registry, deps.Dispatcher, WSOptions{
		MaxMessageBytes:    cfg.MaxMessageBytes,
		WriteTimeout:       cfg.WriteTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, logger)
	router.GET("/ws", gin.WrapH(ws))

	var reader store.ExchangeLogReader
	if r, ok := deps.Journal.(store.ExchangeLogReader); ok {
		reader = r
	}
	ratesHandlers := NewRatesHandlers(deps.Exchange, reader, logger)

	api := router.Group("/api")
	{
		api.GET("/rates", ratesHandlers.Current)
		api.GET("/rates/history", ratesHandlers.History)
		api.GET("/convert", ratesHandlers.Convert)
		api.GET("/exchange/log", ratesHandlers.ExchangeLog)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
