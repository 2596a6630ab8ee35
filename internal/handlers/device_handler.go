package handlers

import (
	"errors"
	"log"
	"net/http"

	"thermolab/internal/models"
	"thermolab/internal/service"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	devices service.DeviceService
}

func NewDeviceHandler(devices service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

type createDeviceRequest struct {
	DeviceID    string              `json:"device_id" binding:"required,max=50"`
	DeviceName  string              `json:"device_name" binding:"required,max=100"`
	Location    string              `json:"location" binding:"max=100"`
	LabIncharge string              `json:"lab_incharge" binding:"max=100"`
	Status      models.DeviceStatus `json:"status" binding:"required"`
	PowerState  models.PowerState   `json:"power_state"`
}

// AddDevice godoc
// @Summary Регистрация устройства
// @Tags Devices
// @Accept json
// @Produce json
// @Router /devices/add [post]
func (h *DeviceHandler) AddDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Device ID, Name, and Status are required."})
		return
	}

	device := &models.Device{
		DeviceID:    req.DeviceID,
		DeviceName:  req.DeviceName,
		Location:    req.Location,
		LabIncharge: req.LabIncharge,
		Status:      req.Status,
		PowerState:  req.PowerState,
	}

	if err := h.devices.Create(c.Request.Context(), device); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidStatus), errors.Is(err, models.ErrInvalidPowerState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrDeviceExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Device already exists"})
		default:
			log.Printf("Failed to create device: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, device)
}

// GetAllDevices godoc
// @Summary Список всех устройств с online/offline статусом
// @Tags Devices
// @Produce json
// @Router /devices/all [get]
func (h *DeviceHandler) GetAllDevices(c *gin.Context) {
	devices, err := h.devices.List(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list devices: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, devices)
}

// GetDevice godoc
// @Summary Устройство со всеми показаниями
// @Tags Devices
// @Produce json
// @Router /devices/{device_id} [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, err := h.devices.Get(c.Request.Context(), c.Param("device_id"))
	if err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
			return
		}
		log.Printf("Failed to get device: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, device)
}

// UpdateDevice godoc
// @Summary Частичное обновление устройства
// @Description Непереданные поля сохраняют текущее значение
// @Tags Devices
// @Accept json
// @Produce json
// @Router /devices/{device_id} [put]
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	var input service.UpdateDeviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	device, err := h.devices.Update(c.Request.Context(), c.Param("device_id"), input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDeviceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		case errors.Is(err, models.ErrInvalidStatus), errors.Is(err, models.ErrInvalidPowerState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Failed to update device: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, device)
}

// RemoveDevice godoc
// @Summary Удаление устройства вместе с показаниями
// @Tags Devices
// @Produce json
// @Router /devices/{device_id} [delete]
func (h *DeviceHandler) RemoveDevice(c *gin.Context) {
	if err := h.devices.Delete(c.Request.Context(), c.Param("device_id")); err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
			return
		}
		log.Printf("Failed to delete device: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device removed successfully"})
}
