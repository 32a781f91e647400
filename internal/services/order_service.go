package services

import (
	"context"
	"errors"
	"math/rand"

	"github.com/ludinhdung/programming-learning-sub003/internal/clock"
	"github.com/ludinhdung/programming-learning-sub003/internal/gateway"
	"github.com/ludinhdung/programming-learning-sub003/internal/models"

	"github.com/google/uuid"
)

// orderCodeRetries bounds the insert-retry loop when two checkouts land in
// the same second.
const orderCodeRetries = 5

// descriptionLimit is the provider's cap on the payment description.
const descriptionLimit = 25

type OrderStore interface {
	ValidationStore
	CreateOrder(ctx context.Context, order *models.Order) error
}

type OrderService struct {
	Store     OrderStore
	Gateway   gateway.Gateway
	Clock     clock.Clock
	LinkTTL   int // minutes
	ReturnURL string
	CancelURL string
}

type CreateOrderInput struct {
	CourseID     string
	LearnerID    string
	InstructorID string
	Price        int64
	CourseName   string
}

type CreateOrderResult struct {
	OrderID     string
	OrderCode   int64
	Amount      int64
	CheckoutURL string
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	checkout, err := Validator{Store: s.Store}.Validate(ctx, in.CourseID, in.InstructorID, in.Price, in.LearnerID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	order, err := s.insertWithFreshCode(ctx, checkout, in)
	if err != nil {
		return CreateOrderResult{}, err
	}

	description := in.CourseName
	if len(description) > descriptionLimit {
		description = description[:descriptionLimit]
	}

	link, err := s.Gateway.CreateLink(ctx, gateway.CreateLinkRequest{
		OrderCode:   order.OrderCode,
		Amount:      order.Amount,
		Description: description,
		Items: []gateway.Item{
			{Name: checkout.Course.Name, Quantity: 1, Price: order.Amount},
		},
		ExpiresIn: s.LinkTTL,
		CancelURL: s.CancelURL,
		ReturnURL: s.ReturnURL,
	})
	if err != nil {
		// The order stays PENDING; it never touches the ledger and can be
		// abandoned or cancelled later.
		return CreateOrderResult{}, err
	}

	return CreateOrderResult{
		OrderID:     order.ID,
		OrderCode:   order.OrderCode,
		Amount:      order.Amount,
		CheckoutURL: link.CheckoutURL,
	}, nil
}

// insertWithFreshCode generates a second-granularity epoch order code and
// inserts the order, retrying with a random offset when the code collides.
// The unique constraint is the arbiter; there is no look-then-insert.
func (s *OrderService) insertWithFreshCode(ctx context.Context, checkout CheckoutContext, in CreateOrderInput) (*models.Order, error) {
	now := s.Clock.Now()
	code := now.Unix()

	for attempt := 0; attempt < orderCodeRetries; attempt++ {
		order := &models.Order{
			ID:           uuid.NewString(),
			OrderCode:    code,
			CourseID:     in.CourseID,
			UserID:       in.LearnerID,
			InstructorID: in.InstructorID,
			Amount:       checkout.Course.Price,
			Status:       models.OrderPending,
			CreatedAt:    now,
		}
		err := s.Store.CreateOrder(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, models.ErrDuplicateOrderCode) {
			return nil, err
		}
		code += 1 + rand.Int63n(999)
	}
	return nil, models.ErrOrderCodeConflict
}

// CancelPayment asks the provider to cancel the checkout link. It is best
// effort and never touches ledger state; only the webhook-driven settlement
// applies financial effects.
func (s *OrderService) CancelPayment(ctx context.Context, orderCode int64, reason string) error {
	return s.Gateway.CancelLink(ctx, orderCode, reason)
}

// PaymentInfo proxies the provider's view of a payment link.
func (s *OrderService) PaymentInfo(ctx context.Context, orderCode int64) (gateway.PaymentInfo, error) {
	return s.Gateway.GetPaymentInfo(ctx, orderCode)
}
