package repository

import (
	"context"
	"errors"
	"time"

	"thermolab/internal/models"

	"gorm.io/gorm"
)

type ReadingRepository interface {
	Create(ctx context.Context, reading *models.Reading) error
	GetByDeviceSince(ctx context.Context, deviceID string, since time.Time) ([]models.Reading, error)
	GetLatestForDevice(ctx context.Context, deviceID string) (*models.Reading, error)
	CountForDevice(ctx context.Context, deviceID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	DeleteOld(ctx context.Context, olderThan time.Time) (int64, error)
}

type readingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) Create(ctx context.Context, reading *models.Reading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

// GetByDeviceSince возвращает показания от since и новее, старые первыми.
// Нулевое since означает без нижней границы.
func (r *readingRepository) GetByDeviceSince(ctx context.Context, deviceID string, since time.Time) ([]models.Reading, error) {
	q := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID)
	if !since.IsZero() {
		q = q.Where("timestamp >= ?", since)
	}

	var readings []models.Reading
	err := q.Order("timestamp ASC").
		Find(&readings).
		Error
	return readings, err
}

// GetLatestForDevice возвращает nil без ошибки, если показаний еще нет.
func (r *readingRepository) GetLatestForDevice(ctx context.Context, deviceID string) (*models.Reading, error) {
	var reading models.Reading
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("timestamp DESC").
		First(&reading).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *readingRepository) CountForDevice(ctx context.Context, deviceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reading{}).
		Where("device_id = ?", deviceID).
		Count(&count).
		Error
	return count, err
}

func (r *readingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reading{}).
		Count(&count).
		Error
	return count, err
}

func (r *readingRepository) DeleteOld(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("timestamp < ?", olderThan).
		Delete(&models.Reading{})
	return res.RowsAffected, res.Error
}
