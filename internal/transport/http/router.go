package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions configures the non-API parts of the router.
type RouterOptions struct {
	CORSOrigins []string
	// StaticDir, when set, is served for every path that matches no route.
	StaticDir string
}

// NewRouter wires the API handler, health check and optional static files into a gin engine.
func NewRouter(api *APIHandler, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(opts.CORSOrigins))
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	api.Register(router.Group("/api"))

	if opts.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.StaticDir))))
	}
	return router
}
