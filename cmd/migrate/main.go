package main

import (
	"context"
	"log"

	"github.com/ludinhdung/programming-learning-sub003/internal/config"
	"github.com/ludinhdung/programming-learning-sub003/internal/db"
	"github.com/ludinhdung/programming-learning-sub003/migrations"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations failed: %v", err)
	}
	log.Printf("migrations applied")
}
