package worker

import (
	"context"
	"log"
	"time"

	"thermolab/internal/service"
)

// RetentionWorker периодически удаляет показания старше срока хранения.
type RetentionWorker struct {
	telemetry service.TelemetryService
	interval  time.Duration
	stopChan  chan struct{}
	running   bool
}

func NewRetentionWorker(telemetry service.TelemetryService, interval time.Duration) *RetentionWorker {
	return &RetentionWorker{
		telemetry: telemetry,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

func (w *RetentionWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Retention Worker started with interval %v", w.interval)

	w.prune()
	go w.run()
}

func (w *RetentionWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("Retention Worker stopped")
}

func (w *RetentionWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.prune()
		case <-w.stopChan:
			return
		}
	}
}

func (w *RetentionWorker) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := w.telemetry.PruneOld(ctx); err != nil {
		log.Printf("Retention Worker error: %v", err)
	}
}
