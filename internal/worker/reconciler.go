package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ludinhdung/programming-learning-sub003/internal/clock"
	"github.com/ludinhdung/programming-learning-sub003/internal/gateway"
	"github.com/ludinhdung/programming-learning-sub003/internal/models"
	"github.com/ludinhdung/programming-learning-sub003/internal/services"
)

type ReconcilerStore interface {
	ListPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	MarkOrderCancelled(ctx context.Context, orderID string) (bool, error)
}

// Reconciler sweeps stale PENDING orders and resolves them against the
// provider's view: paid orders are settled through the same transaction as
// the webhook path, abandoned ones are cancelled. It exists because webhook
// delivery is at-least-once but not guaranteed.
type Reconciler struct {
	Store      ReconcilerStore
	Gateway    gateway.Gateway
	Settlement *services.SettlementService
	Clock      clock.Clock
	Interval   time.Duration
	MinAge     time.Duration
}

func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		if err := r.SyncOnce(ctx); err != nil {
			log.Printf("reconcile error: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Reconciler) SyncOnce(ctx context.Context) error {
	cutoff := r.Clock.Now().Add(-r.MinAge)
	orders, err := r.Store.ListPendingOrdersBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if err := r.reconcileOrder(ctx, order); err != nil {
			log.Printf("reconcile order failed (order_code=%d): %v", order.OrderCode, err)
		}
	}
	return nil
}

func (r *Reconciler) reconcileOrder(ctx context.Context, order models.Order) error {
	info, err := r.Gateway.GetPaymentInfo(ctx, order.OrderCode)
	if err != nil {
		return err
	}

	switch info.Status {
	case gateway.PaymentStatusPaid:
		_, err := r.Settlement.Settle(ctx, order.OrderCode)
		if err != nil && !errors.Is(err, models.ErrAlreadySettled) {
			return err
		}
		log.Printf("reconciled paid order (order_code=%d)", order.OrderCode)
	case gateway.PaymentStatusCancelled, gateway.PaymentStatusExpired:
		cancelled, err := r.Store.MarkOrderCancelled(ctx, order.ID)
		if err != nil {
			return err
		}
		if cancelled {
			log.Printf("cancelled abandoned order (order_code=%d status=%s)", order.OrderCode, info.Status)
		}
	}
	return nil
}
