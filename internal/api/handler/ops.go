package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/greenwave/greenwave/internal/api/models"
	"github.com/greenwave/greenwave/internal/api/response"
	"github.com/greenwave/greenwave/internal/provider/resilience"
	"github.com/greenwave/greenwave/internal/routeopt"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	optimizer *routeopt.Service
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, optimizer *routeopt.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		optimizer: optimizer,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem status including the
// optimization cache.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	subsystems := []models.SubsystemStatus{
		{Name: "postgres", Status: models.HealthStatusOK},
		{Name: "pubsub", Status: models.HealthStatusOK},
	}

	if h.optimizer != nil {
		stats := h.optimizer.CacheStats()
		detail := "entries: " + strconv.Itoa(stats.TotalEntries) + ", fresh: " + strconv.Itoa(stats.FreshEntries)
		subsystems = append(subsystems, models.SubsystemStatus{
			Name:   "route-cache",
			Status: models.HealthStatusOK,
			Detail: &detail,
		})
	}

	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: subsystems,
		Providers:  providerStatuses(),
	}
	response.JSON(w, r, http.StatusOK, status)
}

// providerStatuses reads external provider health from the resilience
// registry.
func providerStatuses() []models.ProviderStatus {
	healths := resilience.GlobalRegistry.GetAllHealth()

	statuses := make([]models.ProviderStatus, 0, len(healths))
	for _, h := range healths {
		ps := models.ProviderStatus{
			Provider: h.Name,
			Status:   models.HealthStatusOK,
		}
		switch {
		case h.IsUnhealthy():
			ps.Status = models.HealthStatusFail
		case h.IsDegraded():
			ps.Status = models.HealthStatusDegraded
		}
		if h.LastSuccessAt != nil {
			ts := models.Timestamp(*h.LastSuccessAt)
			ps.LastSuccessAt = &ts
		}
		if h.LastFailureAt != nil {
			ts := models.Timestamp(*h.LastFailureAt)
			ps.LastFailureAt = &ts
		}
		if h.LastError != "" {
			msg := h.LastError
			ps.Message = &msg
		}
		statuses = append(statuses, ps)
	}
	return statuses
}
