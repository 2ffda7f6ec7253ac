package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/infrastructure/scheduler"
	"github.com/retail/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJobScheduler struct {
	mock.Mock
}

func (m *mockJobScheduler) States() []scheduler.JobState {
	return m.Called().Get(0).([]scheduler.JobState)
}

func (m *mockJobScheduler) RunNow(name string) error {
	return m.Called(name).Error(0)
}

func setupSystemRouter(h *SystemHandler) *gin.Engine {
	router := newTestRouter()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/system/jobs", h.ListJobs)
	router.POST("/system/jobs/:name/run", h.RunJob)
	return router
}

func TestSystemHandler_Health(t *testing.T) {
	router := setupSystemRouter(NewSystemHandler("retail-backend", nil))

	rec := performRequest(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"retail-backend"}`, rec.Body.String())
}

func TestSystemHandler_Ready(t *testing.T) {
	ok := ReadinessCheck{Name: "database", Check: func(context.Context) error { return nil }}
	down := ReadinessCheck{Name: "cache", Check: func(context.Context) error { return errors.New("connection refused") }}

	t.Run("all healthy", func(t *testing.T) {
		router := setupSystemRouter(NewSystemHandler("retail-backend", nil, ok))

		rec := performRequest(router, http.MethodGet, "/ready", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","service":"retail-backend","checks":{"database":"ok"}}`, rec.Body.String())
	})

	t.Run("dependency down", func(t *testing.T) {
		router := setupSystemRouter(NewSystemHandler("retail-backend", nil, ok, down))

		rec := performRequest(router, http.MethodGet, "/ready", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
		assert.Contains(t, rec.Body.String(), `"status":"unavailable"`)
	})
}

func TestSystemHandler_ListJobs(t *testing.T) {
	jobs := new(mockJobScheduler)
	jobs.On("States").Return([]scheduler.JobState{{Name: "alert_purge", Status: scheduler.JobStatusSuccess, Runs: 2}})
	router := setupSystemRouter(NewSystemHandler("retail-backend", jobs))

	rec := performRequest(router, http.MethodGet, "/system/jobs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []scheduler.JobState
	decodeData(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Runs)
}

func TestSystemHandler_ListJobs_NoScheduler(t *testing.T) {
	router := setupSystemRouter(NewSystemHandler("retail-backend", nil))

	rec := performRequest(router, http.MethodGet, "/system/jobs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []scheduler.JobState
	decodeData(t, rec, &got)
	assert.Empty(t, got)
}

func TestSystemHandler_RunJob(t *testing.T) {
	jobs := new(mockJobScheduler)
	jobs.On("RunNow", "alert_purge").Return(nil)
	jobs.On("RunNow", "nightly").Return(fmt.Errorf("%w: nightly", scheduler.ErrJobNotFound))
	jobs.On("RunNow", "stopped").Return(scheduler.ErrSchedulerNotRunning)
	router := setupSystemRouter(NewSystemHandler("retail-backend", jobs))

	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"alert_purge", http.StatusAccepted, ""},
		{"nightly", http.StatusNotFound, dto.ErrCodeNotFound},
		{"stopped", http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performRequest(router, http.MethodPost, "/system/jobs/"+tt.name+"/run", nil)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeResponse(t, rec).Error.Code)
			}
		})
	}
}

func TestSystemHandler_RunJob_NoScheduler(t *testing.T) {
	router := setupSystemRouter(NewSystemHandler("retail-backend", nil))

	rec := performRequest(router, http.MethodPost, "/system/jobs/alert_purge/run", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
