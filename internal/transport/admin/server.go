// Package admin exposes a read-only HTTP surface for health checks and
// store statistics. It observes the chat server; it never affects protocol
// behavior.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/core"
)

// Handlers serves the admin endpoints over a store snapshot.
type Handlers struct {
	state *core.State
	log   *zerolog.Logger
}

// NewHandlers creates the admin handlers.
func NewHandlers(state *core.State, logger *zerolog.Logger) *Handlers {
	return &Handlers{state: state, log: logger}
}

// Healthz reports liveness.
// GET /healthz
func (h *Handlers) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Stats returns current user and channel counts.
// GET /api/stats
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Snapshot())
}

// NewRouter builds the admin gin router.
func NewRouter(state *core.State, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := NewHandlers(state, logger)
	r.GET("/healthz", h.Healthz)
	r.GET("/api/stats", h.Stats)
	return r
}

// NewServer wraps the router in an http.Server bound to addr.
func NewServer(addr string, state *core.State, logger *zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: NewRouter(state, logger),
	}
}
