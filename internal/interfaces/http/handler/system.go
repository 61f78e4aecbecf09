package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/catalogadmin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// healthCheckTimeout bounds the database ping of the health endpoint
const healthCheckTimeout = 3 * time.Second

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Pings the database. 200 when reachable, 503 otherwise. Not behind auth.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   h.uptime(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "database unreachable: "+err.Error())
		return
	}

	h.Success(c, resp)
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      System information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		GoVersion: runtime.Version(),
		Uptime:    h.uptime(),
	})
}

func (h *SystemHandler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}
