package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/infrastructure/scheduler"
	"github.com/retail/backend/internal/interfaces/http/dto"
)

const readinessTimeout = 3 * time.Second

// ReadinessCheck probes one dependency
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// JobScheduler exposes the background jobs to operators
type JobScheduler interface {
	States() []scheduler.JobState
	RunNow(name string) error
}

// HealthResponse is returned by the liveness and readiness probes
// @Description Service health
type HealthResponse struct {
	Status  string            `json:"status" example:"ok"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// SystemHandler handles probes and job administration
type SystemHandler struct {
	BaseHandler
	service   string
	checks    []ReadinessCheck
	scheduler JobScheduler
}

// NewSystemHandler creates a new SystemHandler. jobs may be nil when the
// scheduler is not running in this process.
func NewSystemHandler(service string, jobs JobScheduler, checks ...ReadinessCheck) *SystemHandler {
	return &SystemHandler{service: service, checks: checks, scheduler: jobs}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: h.service})
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Pings the database and the cache. Any failure answers 503.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Service: h.service, Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	c.JSON(status, resp)
}

// ListJobs godoc
// @Summary      Background jobs
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=[]scheduler.JobState}
// @Security     BearerAuth
// @Router       /system/jobs [get]
func (h *SystemHandler) ListJobs(c *gin.Context) {
	if h.scheduler == nil {
		h.Success(c, []scheduler.JobState{})
		return
	}
	h.Success(c, h.scheduler.States())
}

// RunJob godoc
// @Summary      Run a background job now
// @Tags         system
// @Produce      json
// @Param        name path string true "Job name"
// @Success      202 {object} dto.Response
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/jobs/{name}/run [post]
func (h *SystemHandler) RunJob(c *gin.Context) {
	if h.scheduler == nil {
		h.ErrorWithCode(c, dto.ErrCodeServiceUnavailable, "Scheduler is not running")
		return
	}
	err := h.scheduler.RunNow(c.Param("name"))
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(nil))
	case errors.Is(err, scheduler.ErrJobNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, "Job not found")
	case errors.Is(err, scheduler.ErrSchedulerNotRunning):
		h.ErrorWithCode(c, dto.ErrCodeServiceUnavailable, "Scheduler is not running")
	default:
		h.HandleError(c, err)
	}
}
