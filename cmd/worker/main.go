package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarvinH10/asistencias-app/internal/config"
	"github.com/MarvinH10/asistencias-app/internal/queue"
	"github.com/MarvinH10/asistencias-app/internal/store"
)

// The worker consumes registration events and keeps per-day counters in
// Redis so dashboards can read today's Entrada/Salida totals without
// hitting Postgres.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "asistencias:registros")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "registered" {
			continue
		}

		status := string(msg.Body)
		key := "asistencias:conteo:" + time.Now().Format("2006-01-02") + ":" + status
		if err := redisClient.Client.Incr(ctx, key).Err(); err != nil {
			log.Printf("incr %s failed: %v", key, err)
			continue
		}
		// counters only need to survive a few days of dashboard reads
		redisClient.Client.Expire(ctx, key, 72*time.Hour)
	}

	log.Println("worker stopped")
}
