package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"counsel/internal/api"
	"counsel/internal/config"
	"counsel/internal/db"
	"counsel/internal/dialogue"
	"counsel/internal/embedding"
	"counsel/internal/entry"
	"counsel/internal/llm"
	"counsel/internal/profile"
	redisdb "counsel/internal/redis"
)

func main() {
	// API keys come from the environment, .env is optional.
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
	rdb := redisdb.NewClient(cfg)

	queueCfg := llm.DefaultConfig()
	manager := llm.NewManager(queueCfg)
	critical := llm.NewClient(manager, llm.PriorityCritical, queueCfg.CriticalTimeout)
	background := llm.NewClient(manager, llm.PriorityBackground, queueCfg.BackgroundTimeout)

	engine := dialogue.NewEngine(critical, background, cfg.Chat)
	sessions := dialogue.NewSessionStore(rdb)
	guard := dialogue.NewTurnGuard()

	embedder := embedding.NewClient(cfg.Embedding, 60*time.Second)
	embeddings := embedding.NewService(embedder)

	entries := entry.NewStore(db.DB)
	profiles := profile.NewSynthesizer(db.DB, entries, engine)

	if cfg.Backfill.Enabled {
		worker := embedding.NewBackfillWorker(entries, embeddings, cfg.Backfill.ScheduleHours)
		go worker.Start()
		log.Printf("[Main] Embedding backfill worker started (every %d hours)", cfg.Backfill.ScheduleHours)
	} else {
		log.Printf("[Main] Embedding backfill disabled in config")
	}

	svc := &api.Services{
		Engine:     engine,
		Sessions:   sessions,
		Guard:      guard,
		Embeddings: embeddings,
		Entries:    entries,
		Profiles:   profiles,
	}

	r := api.SetupRouter(cfg, rdb, svc)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
