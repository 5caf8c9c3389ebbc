package worker

import (
	"context"
	"log"
	"time"

	"andromeda/internal/service"
)

// StatsWorker периодически прогревает кэш счетчиков запросов данных.
// Только чтение, состояние запросов не трогает.
type StatsWorker struct {
	service   service.DataRequestService
	interval  time.Duration
	stopChan  chan struct{}
	isRunning bool
}

func NewStatsWorker(service service.DataRequestService, interval time.Duration) *StatsWorker {
	return &StatsWorker{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *StatsWorker) Start() {
	if w.isRunning {
		return
	}

	w.isRunning = true
	log.Printf("Stats Worker started with interval %v", w.interval)

	go w.run()
}

func (w *StatsWorker) Stop() {
	if !w.isRunning {
		return
	}

	close(w.stopChan)
	w.isRunning = false
	log.Println("Stats Worker stopped")
}

func (w *StatsWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Первый запуск сразу
	w.refreshStats()

	for {
		select {
		case <-ticker.C:
			w.refreshStats()
		case <-w.stopChan:
			return
		}
	}
}

func (w *StatsWorker) refreshStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := w.service.Stats(ctx); err != nil {
		log.Printf("Stats Worker error: %v", err)
	}
}
