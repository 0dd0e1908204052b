package embedding

import (
	"context"
	"log"
	"time"

	"counsel/internal/entry"
)

// BackfillWorker periodically retries embedding computation for entries that
// were committed while the provider was unavailable.
type BackfillWorker struct {
	store    *entry.Store
	service  *Service
	interval time.Duration
	stopCh   chan struct{}
}

const backfillBatchSize = 50

func NewBackfillWorker(store *entry.Store, service *Service, scheduleHours int) *BackfillWorker {
	if scheduleHours <= 0 {
		scheduleHours = 6
	}
	return &BackfillWorker{
		store:    store,
		service:  service,
		interval: time.Duration(scheduleHours) * time.Hour,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the worker loop until Stop is called.
func (w *BackfillWorker) Start() {
	log.Printf("[Backfill] Started (every %s)", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			log.Printf("[Backfill] Stopped")
			return
		case <-ticker.C:
			w.RunOnce(context.Background())
		}
	}
}

func (w *BackfillWorker) Stop() {
	close(w.stopCh)
}

// RunOnce backfills one batch of entries and returns how many got a vector.
func (w *BackfillWorker) RunOnce(ctx context.Context) int {
	entries, err := w.store.MissingEmbeddings(backfillBatchSize)
	if err != nil {
		log.Printf("[Backfill] listing entries failed: %v", err)
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	filled := 0
	for i := range entries {
		e := &entries[i]
		vec := w.service.EmbedOrNil(ctx, e.Title+" "+e.Description)
		if vec == nil {
			continue
		}
		if err := w.store.SetEmbedding(e.ID, vec); err != nil {
			log.Printf("[Backfill] entry %d: %v", e.ID, err)
			continue
		}
		filled++
	}
	log.Printf("[Backfill] %d/%d entries embedded", filled, len(entries))
	return filled
}
