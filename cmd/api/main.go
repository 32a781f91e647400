package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ludinhdung/programming-learning-sub003/internal/clock"
	"github.com/ludinhdung/programming-learning-sub003/internal/config"
	"github.com/ludinhdung/programming-learning-sub003/internal/db"
	"github.com/ludinhdung/programming-learning-sub003/internal/gateway"
	internalhttp "github.com/ludinhdung/programming-learning-sub003/internal/http"
	"github.com/ludinhdung/programming-learning-sub003/internal/notify"
	"github.com/ludinhdung/programming-learning-sub003/internal/services"
	"github.com/ludinhdung/programming-learning-sub003/internal/store"
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

	st := store.New(pool)
	clk := clock.NewSystem()
	gw := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.ClientID, cfg.Gateway.APIKey, cfg.Gateway.ChecksumKey)
	commission := services.CommissionPolicy{RatePercent: cfg.Commission.RatePercent}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.AMQP.URL != "" {
		conn, pub, err := notify.Setup(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("amqp setup failed: %v", err)
		}
		defer conn.Close()
		notifier = pub
	}

	orderSvc := &services.OrderService{
		Store:     st,
		Gateway:   gw,
		Clock:     clk,
		LinkTTL:   cfg.Gateway.LinkTTLMinutes,
		ReturnURL: cfg.Gateway.ReturnURL,
		CancelURL: cfg.Gateway.CancelURL,
	}
	settlementSvc := &services.SettlementService{
		Store:      st,
		Commission: commission,
		Notifier:   notifier,
		Clock:      clk,
	}
	walletSvc := &services.WalletService{
		Store:      st,
		Commission: commission,
		Clock:      clk,
	}

	h := internalhttp.NewHandler(orderSvc, settlementSvc, walletSvc, gw)
	srv := internalhttp.NewServer(h, cfg.Admin.TokenBcryptHash)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		log.Printf("api listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
