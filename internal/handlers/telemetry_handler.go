package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/service"

	"github.com/gin-gonic/gin"
)

type TelemetryHandler struct {
	telemetry service.TelemetryService
}

func NewTelemetryHandler(telemetry service.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry}
}

type ingestRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	// Указатели, чтобы отличить отсутствующее поле от нуля:
	// temperature: 0 - валидное показание.
	Temperature *float64   `json:"temperature" binding:"required"`
	Humidity    *float64   `json:"humidity" binding:"required"`
	Timestamp   *time.Time `json:"timestamp"`
}

// ReceiveData godoc
// @Summary Прием телеметрии от устройства
// @Description Открытый эндпоинт для полевых датчиков, лимит по IP
// @Tags Telemetry
// @Accept json
// @Produce json
// @Router /devices/data [post]
func (h *TelemetryHandler) ReceiveData(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id, temperature, and humidity are required."})
		return
	}

	input := service.IngestInput{
		DeviceID:    req.DeviceID,
		Temperature: *req.Temperature,
		Humidity:    *req.Humidity,
	}
	if req.Timestamp != nil {
		input.Timestamp = *req.Timestamp
	}

	reading, err := h.telemetry.Ingest(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found."})
			return
		}
		log.Printf("Failed to ingest reading: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Data received",
		"reading": reading,
	})
}

// GetReadings godoc
// @Summary Показания устройства за окно времени
// @Description range: 24h (по умолчанию), 7d, 30d или all; старые первыми
// @Tags Telemetry
// @Produce json
// @Router /devices/{device_id}/readings [get]
func (h *TelemetryHandler) GetReadings(c *gin.Context) {
	deviceID := c.Param("device_id")
	rangeToken := c.DefaultQuery("range", "24h")

	readings, err := h.telemetry.QueryWindow(c.Request.Context(), deviceID, rangeToken)
	if err != nil {
		h.writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"range":     rangeToken,
		"count":     len(readings),
		"readings":  readings,
	})
}

// ExportReadings godoc
// @Summary Экспорт показаний в CSV или XLSX
// @Tags Telemetry
// @Produce octet-stream
// @Router /devices/{device_id}/export [get]
func (h *TelemetryHandler) ExportReadings(c *gin.Context) {
	deviceID := c.Param("device_id")
	rangeToken := c.DefaultQuery("range", "24h")
	format := c.DefaultQuery("format", "csv")

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)

	switch format {
	case "csv":
		data, filename, err = h.telemetry.ExportCSV(c.Request.Context(), deviceID, rangeToken)
		contentType = "text/csv"
	case "excel", "xlsx":
		data, filename, err = h.telemetry.ExportExcel(c.Request.Context(), deviceID, rangeToken)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format, use 'csv' or 'xlsx'"})
		return
	}

	if err != nil {
		h.writeQueryError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *TelemetryHandler) writeQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range, use 24h, 7d, 30d or all"})
	case errors.Is(err, models.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
	case errors.Is(err, models.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for the requested range"})
	default:
		log.Printf("Telemetry query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
