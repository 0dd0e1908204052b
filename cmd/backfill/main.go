// One-shot embedding backfill. Useful after provider outages or when the
// embedding model changes; the server runs the same pass on a schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"counsel/internal/config"
	"counsel/internal/db"
	"counsel/internal/embedding"
	"counsel/internal/entry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}

	embedder := embedding.NewClient(cfg.Embedding, 60*time.Second)
	service := embedding.NewService(embedder)
	worker := embedding.NewBackfillWorker(entry.NewStore(db.DB), service, cfg.Backfill.ScheduleHours)

	filled := worker.RunOnce(context.Background())
	fmt.Printf("Backfilled %d embeddings\n", filled)
}
