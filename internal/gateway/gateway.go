// Package gateway adapts the external payment provider. Provider wire types
// and field names stay inside this package; callers only see the neutral
// types below.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
// Payloads that fail verification must never be processed.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Error is an upstream provider failure.
type Error struct {
	Status int
	Code   string
	Desc   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error (status=%d code=%s): %s", e.Status, e.Code, e.Desc)
}

type Item struct {
	Name     string
	Quantity int
	Price    int64
}

type CreateLinkRequest struct {
	OrderCode   int64
	Amount      int64
	Description string
	Items       []Item
	ExpiresIn   int // minutes
	CancelURL   string
	ReturnURL   string
}

type CheckoutLink struct {
	CheckoutURL   string
	PaymentLinkID string
	OrderCode     int64
}

type PaymentInfo struct {
	OrderCode  int64
	Amount     int64
	AmountPaid int64
	Status     string // PENDING, PAID, CANCELLED, EXPIRED
	Reference  string
}

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusPaid      = "PAID"
	PaymentStatusCancelled = "CANCELLED"
	PaymentStatusExpired   = "EXPIRED"
)

// WebhookEvent is a verified payment notification.
type WebhookEvent struct {
	OrderCode int64
	Amount    int64
	Reference string
	Success   bool
	Code      string
	Desc      string
}

type Gateway interface {
	CreateLink(ctx context.Context, req CreateLinkRequest) (CheckoutLink, error)
	GetPaymentInfo(ctx context.Context, orderCode int64) (PaymentInfo, error)
	CancelLink(ctx context.Context, orderCode int64, reason string) error
	VerifyWebhook(raw []byte) (WebhookEvent, error)
}
