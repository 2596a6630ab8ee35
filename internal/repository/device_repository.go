package repository

import (
	"context"

	"thermolab/internal/models"

	"gorm.io/gorm"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetAll(ctx context.Context) ([]models.Device, error)
	GetByID(ctx context.Context, deviceID string) (*models.Device, error)
	GetWithReadings(ctx context.Context, deviceID string) (*models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	Delete(ctx context.Context, deviceID string) error
	Count(ctx context.Context) (int64, error)
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Create(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

func (r *deviceRepository) GetAll(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).
		Order("device_id ASC").
		Find(&devices).
		Error
	return devices, err
}

func (r *deviceRepository) GetByID(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).
		First(&device, "device_id = ?", deviceID).
		Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepository) GetWithReadings(ctx context.Context, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).
		Preload("Readings", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		First(&device, "device_id = ?", deviceID).
		Error
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepository) Update(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}

// Delete удаляет устройство; показания уходят каскадом на уровне БД.
func (r *deviceRepository) Delete(ctx context.Context, deviceID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.Device{}, "device_id = ?", deviceID).
		Error
}

func (r *deviceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Device{}).
		Count(&count).
		Error
	return count, err
}
