package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"thermolab/internal/middleware"
	"thermolab/internal/models"
	"thermolab/internal/repository"
	"thermolab/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   service.AuthService
}

// фейковый кэш вместо Redis
type fakeCache struct {
	data map[string][]byte
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

// newTestEnv поднимает роутер с теми же маршрутами, что и main
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Device{}, &models.Reading{}))

	deviceRepo := repository.NewDeviceRepository(db)
	readingRepo := repository.NewReadingRepository(db)
	userRepo := repository.NewUserRepository(db)
	cache := &fakeCache{data: make(map[string][]byte)}

	authService := service.NewAuthService(userRepo, "test-secret", 2*time.Hour,
		"admin@lab.local", "secret123", "Admin")
	deviceService := service.NewDeviceService(deviceRepo, readingRepo, cache, 5*time.Minute, time.Minute)
	telemetryService := service.NewTelemetryService(deviceRepo, readingRepo, 0)

	require.NoError(t, authService.SeedAdmin(context.Background()))

	authHandler := NewAuthHandler(authService)
	deviceHandler := NewDeviceHandler(deviceService)
	telemetryHandler := NewTelemetryHandler(telemetryService)
	dashboardHandler := NewDashboardHandler(deviceService, cache)

	adminOnly := middleware.AdminOnly(authService)

	r := gin.New()
	r.POST("/auth/login", authHandler.Login)

	devices := r.Group("/devices")
	devices.POST("/data", telemetryHandler.ReceiveData)

	registry := devices.Group("", adminOnly)
	registry.POST("/add", deviceHandler.AddDevice)
	registry.GET("/all", deviceHandler.GetAllDevices)
	registry.GET("/:device_id", deviceHandler.GetDevice)
	registry.PUT("/:device_id", deviceHandler.UpdateDevice)
	registry.DELETE("/:device_id", deviceHandler.RemoveDevice)
	registry.GET("/:device_id/readings", telemetryHandler.GetReadings)
	registry.GET("/:device_id/export", telemetryHandler.ExportReadings)

	r.GET("/dashboard", adminOnly, dashboardHandler.GetDashboard)

	return &testEnv{router: r, db: db, auth: authService}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.auth.Login(context.Background(), "admin@lab.local", "secret123")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
