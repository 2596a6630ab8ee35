package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/repository"
	"thermolab/internal/utils"

	"gorm.io/gorm"
)

type IngestInput struct {
	DeviceID    string
	Temperature float64
	Humidity    float64
	Timestamp   time.Time
}

type TelemetryService interface {
	Ingest(ctx context.Context, input IngestInput) (*models.Reading, error)
	QueryWindow(ctx context.Context, deviceID, rangeToken string) ([]models.Reading, error)
	ExportCSV(ctx context.Context, deviceID, rangeToken string) ([]byte, string, error)
	ExportExcel(ctx context.Context, deviceID, rangeToken string) ([]byte, string, error)
	PruneOld(ctx context.Context) (int64, error)
}

type telemetryService struct {
	devices   repository.DeviceRepository
	readings  repository.ReadingRepository
	retention time.Duration
}

func NewTelemetryService(devices repository.DeviceRepository, readings repository.ReadingRepository, retention time.Duration) TelemetryService {
	return &telemetryService{
		devices:   devices,
		readings:  readings,
		retention: retention,
	}
}

// Ingest принимает показание от устройства. Устройство должно быть
// зарегистрировано заранее; timestamp по умолчанию - время сервера.
// "Последний раз на связи" нигде не пишется: online/offline выводится
// из самого свежего показания при чтении.
func (s *telemetryService) Ingest(ctx context.Context, input IngestInput) (*models.Reading, error) {
	if _, err := s.devices.GetByID(ctx, input.DeviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDeviceNotFound
		}
		return nil, err
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	reading := &models.Reading{
		DeviceID:    input.DeviceID,
		Temperature: input.Temperature,
		Humidity:    input.Humidity,
		Timestamp:   ts,
	}
	if err := s.readings.Create(ctx, reading); err != nil {
		return nil, err
	}

	return reading, nil
}

// ParseRange переводит токен окна в нижнюю границу времени.
// Нулевое время означает неограниченное окно.
func ParseRange(token string, now time.Time) (time.Time, error) {
	switch token {
	case "", "24h":
		return now.Add(-24 * time.Hour), nil
	case "7d":
		return now.Add(-7 * 24 * time.Hour), nil
	case "30d":
		return now.Add(-30 * 24 * time.Hour), nil
	case "all":
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrInvalidRange, token)
	}
}

func (s *telemetryService) QueryWindow(ctx context.Context, deviceID, rangeToken string) ([]models.Reading, error) {
	since, err := ParseRange(rangeToken, time.Now())
	if err != nil {
		return nil, err
	}

	if _, err := s.devices.GetByID(ctx, deviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDeviceNotFound
		}
		return nil, err
	}

	return s.readings.GetByDeviceSince(ctx, deviceID, since)
}

func (s *telemetryService) ExportCSV(ctx context.Context, deviceID, rangeToken string) ([]byte, string, error) {
	readings, err := s.QueryWindow(ctx, deviceID, rangeToken)
	if err != nil {
		return nil, "", err
	}
	if len(readings) == 0 {
		return nil, "", models.ErrNoData
	}

	data, err := utils.ReadingsCSV(readings)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("device-%s-data-%s.csv", deviceID, normalizeRange(rangeToken))
	return data, filename, nil
}

func (s *telemetryService) ExportExcel(ctx context.Context, deviceID, rangeToken string) ([]byte, string, error) {
	readings, err := s.QueryWindow(ctx, deviceID, rangeToken)
	if err != nil {
		return nil, "", err
	}
	if len(readings) == 0 {
		return nil, "", models.ErrNoData
	}

	data, err := utils.ReadingsExcel(deviceID, readings)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("device-%s-data-%s.xlsx", deviceID, normalizeRange(rangeToken))
	return data, filename, nil
}

func (s *telemetryService) PruneOld(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	deleted, err := s.readings.DeleteOld(ctx, time.Now().UTC().Add(-s.retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("Retention: pruned %d readings", deleted)
	}
	return deleted, nil
}

func normalizeRange(token string) string {
	if token == "" {
		return "24h"
	}
	return token
}
