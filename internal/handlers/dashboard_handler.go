package handlers

import (
	"log"
	"net/http"

	"thermolab/internal/repository"
	"thermolab/internal/service"

	"github.com/gin-gonic/gin"
)

const fleetSnapshotKey = "fleet:snapshot"

type DashboardHandler struct {
	devices service.DeviceService
	cache   repository.CacheRepository
}

func NewDashboardHandler(devices service.DeviceService, cache repository.CacheRepository) *DashboardHandler {
	return &DashboardHandler{
		devices: devices,
		cache:   cache,
	}
}

// GetDashboard godoc
// @Summary Сводка по парку устройств
// @Description Счетчики online/offline и последнее показание каждого
// @Description устройства. Отдается из снапшота в Redis, если он свежий.
// @Tags Dashboard
// @Produce json
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var snapshot service.FleetSummary
	if hit, err := h.cache.GetJSON(ctx, fleetSnapshotKey, &snapshot); err == nil && hit {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"cached":  true,
			"data":    snapshot,
		})
		return
	}

	summary, err := h.devices.Summary(ctx)
	if err != nil {
		log.Printf("Failed to build fleet summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cached":  false,
		"data":    summary,
	})
}
