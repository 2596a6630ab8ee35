package service

import (
	"context"
	"errors"
	"log"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/repository"

	"gorm.io/gorm"
)

const deviceListCacheKey = "devices:all"

type UpdateDeviceInput struct {
	DeviceName  *string              `json:"device_name"`
	Location    *string              `json:"location"`
	LabIncharge *string              `json:"lab_incharge"`
	Status      *models.DeviceStatus `json:"status"`
	PowerState  *models.PowerState   `json:"power_state"`
}

type DeviceOverview struct {
	Device      models.Device   `json:"device"`
	LastReading *models.Reading `json:"last_reading,omitempty"`
}

type FleetSummary struct {
	Total         int64            `json:"total"`
	Online        int64            `json:"online"`
	Offline       int64            `json:"offline"`
	TotalReadings int64            `json:"total_readings"`
	Devices       []DeviceOverview `json:"devices"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

type DeviceService interface {
	Create(ctx context.Context, device *models.Device) error
	List(ctx context.Context) ([]models.Device, error)
	Get(ctx context.Context, deviceID string) (*models.Device, error)
	Update(ctx context.Context, deviceID string, input UpdateDeviceInput) (*models.Device, error)
	Delete(ctx context.Context, deviceID string) error
	Summary(ctx context.Context) (*FleetSummary, error)
}

type deviceService struct {
	devices       repository.DeviceRepository
	readings      repository.ReadingRepository
	cache         repository.CacheRepository
	onlineWindow  time.Duration
	deviceListTTL time.Duration
}

func NewDeviceService(devices repository.DeviceRepository, readings repository.ReadingRepository, cache repository.CacheRepository, onlineWindow, deviceListTTL time.Duration) DeviceService {
	if onlineWindow <= 0 {
		onlineWindow = 5 * time.Minute
	}

	return &deviceService{
		devices:       devices,
		readings:      readings,
		cache:         cache,
		onlineWindow:  onlineWindow,
		deviceListTTL: deviceListTTL,
	}
}

func (s *deviceService) Create(ctx context.Context, device *models.Device) error {
	if !device.Status.Valid() {
		return models.ErrInvalidStatus
	}
	if device.PowerState == "" {
		device.PowerState = models.PowerOff
	}
	if !device.PowerState.Valid() {
		return models.ErrInvalidPowerState
	}

	if err := s.devices.Create(ctx, device); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ErrDeviceExists
		}
		return err
	}

	s.invalidateListCache(ctx)
	device.Connectivity = models.ConnectivityOffline
	return nil
}

func (s *deviceService) List(ctx context.Context) ([]models.Device, error) {
	var cached []models.Device
	if hit, err := s.cache.GetJSON(ctx, deviceListCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	devices, err := s.devices.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range devices {
		last, err := s.readings.GetLatestForDevice(ctx, devices[i].DeviceID)
		if err != nil {
			return nil, err
		}
		devices[i].Connectivity = models.ProjectConnectivity(last, now, s.onlineWindow)
	}

	if err := s.cache.SetJSON(ctx, deviceListCacheKey, devices, s.deviceListTTL); err != nil {
		log.Printf("Failed to cache device list: %v", err)
	}

	return devices, nil
}

func (s *deviceService) Get(ctx context.Context, deviceID string) (*models.Device, error) {
	device, err := s.devices.GetWithReadings(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDeviceNotFound
		}
		return nil, err
	}

	last := models.LastReading(device.Readings)
	device.Connectivity = models.ProjectConnectivity(last, time.Now(), s.onlineWindow)
	return device, nil
}

// Update сливает только присланные поля; остальные остаются как в БД.
func (s *deviceService) Update(ctx context.Context, deviceID string, input UpdateDeviceInput) (*models.Device, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDeviceNotFound
		}
		return nil, err
	}

	if input.DeviceName != nil {
		device.DeviceName = *input.DeviceName
	}
	if input.Location != nil {
		device.Location = *input.Location
	}
	if input.LabIncharge != nil {
		device.LabIncharge = *input.LabIncharge
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, models.ErrInvalidStatus
		}
		device.Status = *input.Status
	}
	if input.PowerState != nil {
		if !input.PowerState.Valid() {
			return nil, models.ErrInvalidPowerState
		}
		device.PowerState = *input.PowerState
	}

	if err := s.devices.Update(ctx, device); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)

	last, err := s.readings.GetLatestForDevice(ctx, device.DeviceID)
	if err != nil {
		return nil, err
	}
	device.Connectivity = models.ProjectConnectivity(last, time.Now(), s.onlineWindow)
	return device, nil
}

// Delete возвращает ErrDeviceNotFound и при повторном удалении:
// идемпотентность здесь не гарантируется.
func (s *deviceService) Delete(ctx context.Context, deviceID string) error {
	if _, err := s.devices.GetByID(ctx, deviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrDeviceNotFound
		}
		return err
	}

	if err := s.devices.Delete(ctx, deviceID); err != nil {
		return err
	}

	s.invalidateListCache(ctx)
	return nil
}

func (s *deviceService) Summary(ctx context.Context) (*FleetSummary, error) {
	devices, err := s.devices.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	totalReadings, err := s.readings.Count(ctx)
	if err != nil {
		return nil, err
	}

	summary := &FleetSummary{
		Total:         int64(len(devices)),
		TotalReadings: totalReadings,
		Devices:       make([]DeviceOverview, 0, len(devices)),
		GeneratedAt:   time.Now().UTC(),
	}

	now := time.Now()
	for i := range devices {
		last, err := s.readings.GetLatestForDevice(ctx, devices[i].DeviceID)
		if err != nil {
			return nil, err
		}

		devices[i].Connectivity = models.ProjectConnectivity(last, now, s.onlineWindow)
		if devices[i].Connectivity == models.ConnectivityOnline {
			summary.Online++
		} else {
			summary.Offline++
		}

		summary.Devices = append(summary.Devices, DeviceOverview{
			Device:      devices[i],
			LastReading: last,
		})
	}

	return summary, nil
}

func (s *deviceService) invalidateListCache(ctx context.Context) {
	if err := s.cache.Delete(ctx, deviceListCacheKey); err != nil {
		log.Printf("Failed to invalidate device list cache: %v", err)
	}
}
