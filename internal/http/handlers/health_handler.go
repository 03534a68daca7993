// Health HTTP handlers: liveness, service status and database check.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	OK             bool   `json:"ok" example:"true"`
	HasOpenAIKey   bool   `json:"hasOpenAIKey"`
	Model          string `json:"model" example:"gpt-4o-mini"`
	CounterBackend string `json:"counterBackend" example:"memory"`
}

// DBHealthResponse is returned by GET /api/health/db.
type DBHealthResponse struct {
	OK     bool      `json:"ok" example:"true"`
	DBTime time.Time `json:"dbTime"`
}

// Liveness godoc
// @ID          liveness
// @Summary     Liveness probe
// @Tags        Health
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      /health [get]
func (h *Handlers) Liveness(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}

// Health godoc
// @ID          health
// @Summary     Service status
// @Description Reports whether a model credential is configured, the model name and the counter backend.
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /api/health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		OK:             true,
		HasOpenAIKey:   h.info.HasModelKey,
		Model:          h.info.Model,
		CounterBackend: h.info.CounterBackend,
	})
}

// DBHealth godoc
// @ID          dbHealth
// @Summary     Database connectivity
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.DBHealthResponse
// @Failure     503  {object}  handlers.ErrorResponse  "Database unreachable"
// @Router      /api/health/db [get]
func (h *Handlers) DBHealth(c *gin.Context) {
	if h.ping == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "database not configured")
		return
	}
	at, err := h.ping(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "database unreachable")
		return
	}
	ok(c, http.StatusOK, DBHealthResponse{OK: true, DBTime: at})
}
