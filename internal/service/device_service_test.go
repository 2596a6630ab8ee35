package service

import (
	"context"
	"testing"
	"time"

	"thermolab/internal/models"
	"thermolab/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDeviceService(t *testing.T) (DeviceService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewDeviceService(
		repository.NewDeviceRepository(db),
		repository.NewReadingRepository(db),
		newFakeCache(),
		5*time.Minute,
		time.Minute,
	)
	return svc, db
}

func TestDeviceCreateAndGet(t *testing.T) {
	svc, _ := newDeviceService(t)
	ctx := context.Background()

	device := &models.Device{
		DeviceID:   "dev-42",
		DeviceName: "Lab A",
		Status:     models.StatusActive,
	}
	require.NoError(t, svc.Create(ctx, device))
	assert.Equal(t, models.PowerOff, device.PowerState)

	got, err := svc.Get(ctx, "dev-42")
	require.NoError(t, err)
	assert.Equal(t, "dev-42", got.DeviceID)
	assert.Equal(t, "Lab A", got.DeviceName)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Equal(t, models.ConnectivityOffline, got.Connectivity)
	assert.Empty(t, got.Readings)
}

func TestDeviceCreateInvalidStatus(t *testing.T) {
	svc, _ := newDeviceService(t)

	err := svc.Create(context.Background(), &models.Device{
		DeviceID:   "dev-1",
		DeviceName: "Lab A",
		Status:     "broken",
	})
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestDeviceCreateDuplicate(t *testing.T) {
	svc, _ := newDeviceService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID:   "dev-1",
		DeviceName: "Original",
		Status:     models.StatusActive,
	}))

	err := svc.Create(ctx, &models.Device{
		DeviceID:   "dev-1",
		DeviceName: "Impostor",
		Status:     models.StatusInactive,
	})
	assert.ErrorIs(t, err, models.ErrDeviceExists)

	// Исходная запись не тронута
	got, err := svc.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "Original", got.DeviceName)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestDeviceGetNotFound(t *testing.T) {
	svc, _ := newDeviceService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrDeviceNotFound)
}

func TestDevicePartialUpdate(t *testing.T) {
	svc, _ := newDeviceService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID:    "dev-1",
		DeviceName:  "Lab A",
		Location:    "Room 101",
		LabIncharge: "Dr. Rao",
		Status:      models.StatusActive,
		PowerState:  models.PowerOn,
	}))

	location := "Room 202"
	updated, err := svc.Update(ctx, "dev-1", UpdateDeviceInput{Location: &location})
	require.NoError(t, err)

	assert.Equal(t, "Room 202", updated.Location)
	assert.Equal(t, "Lab A", updated.DeviceName)
	assert.Equal(t, "Dr. Rao", updated.LabIncharge)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Equal(t, models.PowerOn, updated.PowerState)
}

func TestDeviceUpdateInvalidTokens(t *testing.T) {
	svc, _ := newDeviceService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID:   "dev-1",
		DeviceName: "Lab A",
		Status:     models.StatusActive,
	}))

	badStatus := models.DeviceStatus("sleeping")
	_, err := svc.Update(ctx, "dev-1", UpdateDeviceInput{Status: &badStatus})
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	badPower := models.PowerState("MAYBE")
	_, err = svc.Update(ctx, "dev-1", UpdateDeviceInput{PowerState: &badPower})
	assert.ErrorIs(t, err, models.ErrInvalidPowerState)

	_, err = svc.Update(ctx, "missing", UpdateDeviceInput{})
	assert.ErrorIs(t, err, models.ErrDeviceNotFound)
}

func TestDeviceDeleteCascades(t *testing.T) {
	svc, db := newDeviceService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID:   "dev-1",
		DeviceName: "Lab A",
		Status:     models.StatusActive,
	}))

	readings := repository.NewReadingRepository(db)
	for i := 0; i < 3; i++ {
		require.NoError(t, readings.Create(ctx, &models.Reading{
			DeviceID:    "dev-1",
			Temperature: 20 + float64(i),
			Humidity:    50,
			Timestamp:   time.Now().UTC(),
		}))
	}

	require.NoError(t, svc.Delete(ctx, "dev-1"))

	_, err := svc.Get(ctx, "dev-1")
	assert.ErrorIs(t, err, models.ErrDeviceNotFound)

	count, err := readings.CountForDevice(ctx, "dev-1")
	require.NoError(t, err)
	assert.Zero(t, count, "cascade delete should remove readings")

	// Повторное удаление - not found, не успех
	assert.ErrorIs(t, svc.Delete(ctx, "dev-1"), models.ErrDeviceNotFound)
}

func TestDeviceListConnectivity(t *testing.T) {
	svc, db := newDeviceService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID: "fresh", DeviceName: "Fresh", Status: models.StatusActive,
	}))
	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID: "stale", DeviceName: "Stale", Status: models.StatusActive,
	}))

	readings := repository.NewReadingRepository(db)
	require.NoError(t, readings.Create(ctx, &models.Reading{
		DeviceID: "fresh", Temperature: 21, Humidity: 50, Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, readings.Create(ctx, &models.Reading{
		DeviceID: "stale", Temperature: 21, Humidity: 50, Timestamp: time.Now().UTC().Add(-time.Hour),
	}))

	devices, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	byID := map[string]models.Connectivity{}
	for _, d := range devices {
		byID[d.DeviceID] = d.Connectivity
	}
	assert.Equal(t, models.ConnectivityOnline, byID["fresh"])
	assert.Equal(t, models.ConnectivityOffline, byID["stale"])
}

func TestFleetSummary(t *testing.T) {
	svc, db := newDeviceService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID: "dev-1", DeviceName: "A", Status: models.StatusActive,
	}))
	require.NoError(t, svc.Create(ctx, &models.Device{
		DeviceID: "dev-2", DeviceName: "B", Status: models.StatusActive,
	}))

	readings := repository.NewReadingRepository(db)
	require.NoError(t, readings.Create(ctx, &models.Reading{
		DeviceID: "dev-1", Temperature: 21, Humidity: 50, Timestamp: time.Now().UTC(),
	}))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, int64(1), summary.Online)
	assert.Equal(t, int64(1), summary.Offline)
	assert.Equal(t, int64(1), summary.TotalReadings)
	assert.Len(t, summary.Devices, 2)
}
