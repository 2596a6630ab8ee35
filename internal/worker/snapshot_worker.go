package worker

import (
	"context"
	"log"
	"time"

	"thermolab/internal/repository"
	"thermolab/internal/service"
)

const fleetSnapshotKey = "fleet:snapshot"

// SnapshotWorker пересчитывает сводку по парку устройств и кладет ее
// в Redis, чтобы дашборд не собирал ее на каждый запрос.
type SnapshotWorker struct {
	devices  service.DeviceService
	cache    repository.CacheRepository
	interval time.Duration
	stopChan chan struct{}
	running  bool
}

func NewSnapshotWorker(devices service.DeviceService, cache repository.CacheRepository, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		devices:  devices,
		cache:    cache,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *SnapshotWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Snapshot Worker started with interval %v", w.interval)

	w.snapshot()
	go w.run()
}

func (w *SnapshotWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("Snapshot Worker stopped")
}

func (w *SnapshotWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.snapshot()
		case <-w.stopChan:
			return
		}
	}
}

func (w *SnapshotWorker) snapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary, err := w.devices.Summary(ctx)
	if err != nil {
		log.Printf("Snapshot Worker error: %v", err)
		return
	}

	// TTL вдвое больше интервала: устаревший снапшот сам исчезнет,
	// и дашборд соберет сводку напрямую.
	if err := w.cache.SetJSON(ctx, fleetSnapshotKey, summary, 2*w.interval); err != nil {
		log.Printf("Snapshot Worker: failed to cache summary: %v", err)
	}
}
