package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ludinhdung/programming-learning-sub003/internal/clock"
	"github.com/ludinhdung/programming-learning-sub003/internal/config"
	"github.com/ludinhdung/programming-learning-sub003/internal/db"
	"github.com/ludinhdung/programming-learning-sub003/internal/gateway"
	"github.com/ludinhdung/programming-learning-sub003/internal/notify"
	"github.com/ludinhdung/programming-learning-sub003/internal/services"
	"github.com/ludinhdung/programming-learning-sub003/internal/store"
	"github.com/ludinhdung/programming-learning-sub003/internal/worker"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)
	clk := clock.NewSystem()
	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.ClientID, cfg.Gateway.APIKey, cfg.Gateway.ChecksumKey)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.AMQP.URL != "" {
		conn, pub, err := notify.Setup(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("amqp setup failed: %v", err)
		}
		defer conn.Close()
		notifier = pub
	}

	settlementSvc := &services.SettlementService{
		Store:      st,
		Commission: services.CommissionPolicy{RatePercent: cfg.Commission.RatePercent},
		Notifier:   notifier,
		Clock:      clk,
	}

	r := &worker.Reconciler{
		Store:      st,
		Gateway:    gw,
		Settlement: settlementSvc,
		Clock:      clk,
		Interval:   time.Duration(cfg.Worker.IntervalSeconds) * time.Second,
		MinAge:     time.Duration(cfg.Worker.MinAgeMinutes) * time.Minute,
	}

	log.Printf("reconciler started (interval=%ds min_age=%dm)", cfg.Worker.IntervalSeconds, cfg.Worker.MinAgeMinutes)
	r.Run(ctx)
}
