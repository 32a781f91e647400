package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ludinhdung/programming-learning-sub003/internal/clock"
	"github.com/ludinhdung/programming-learning-sub003/internal/gateway"
	"github.com/ludinhdung/programming-learning-sub003/internal/models"
)

type fakeGateway struct {
	createCalls []gateway.CreateLinkRequest
	createErr   error
	info        gateway.PaymentInfo
	infoErr     error
	cancelled   []int64
	cancelErr   error
}

func (f *fakeGateway) CreateLink(_ context.Context, req gateway.CreateLinkRequest) (gateway.CheckoutLink, error) {
	f.createCalls = append(f.createCalls, req)
	if f.createErr != nil {
		return gateway.CheckoutLink{}, f.createErr
	}
	return gateway.CheckoutLink{
		CheckoutURL:   "https://pay.example.com/web/abc123",
		PaymentLinkID: "abc123",
		OrderCode:     req.OrderCode,
	}, nil
}

func (f *fakeGateway) GetPaymentInfo(_ context.Context, orderCode int64) (gateway.PaymentInfo, error) {
	if f.infoErr != nil {
		return gateway.PaymentInfo{}, f.infoErr
	}
	info := f.info
	info.OrderCode = orderCode
	return info, nil
}

func (f *fakeGateway) CancelLink(_ context.Context, orderCode int64, _ string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, orderCode)
	return nil
}

func (f *fakeGateway) VerifyWebhook(_ []byte) (gateway.WebhookEvent, error) {
	return gateway.WebhookEvent{}, gateway.ErrInvalidSignature
}

func newOrderService(st *fakeStore, gw *fakeGateway, now time.Time) *OrderService {
	return &OrderService{
		Store:     st,
		Gateway:   gw,
		Clock:     clock.NewFixed(now),
		LinkTTL:   10,
		ReturnURL: "https://app.example.com/payment/return",
		CancelURL: "https://app.example.com/payment/cancel",
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("creates pending order and returns checkout link", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		gw := &fakeGateway{}
		svc := newOrderService(st, gw, now)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        100000,
			CourseName:   "Intro to Go",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.OrderCode != now.Unix() {
			t.Fatalf("expected order code %d, got %d", now.Unix(), res.OrderCode)
		}
		if res.CheckoutURL == "" {
			t.Fatalf("expected checkout url")
		}

		order, err := st.GetOrderByCode(context.Background(), res.OrderCode)
		if err != nil {
			t.Fatalf("expected order persisted: %v", err)
		}
		if order.Status != models.OrderPending {
			t.Fatalf("expected PENDING, got %s", order.Status)
		}
		if order.Amount != 100000 {
			t.Fatalf("expected amount 100000, got %d", order.Amount)
		}
		if len(gw.createCalls) != 1 {
			t.Fatalf("expected 1 gateway call, got %d", len(gw.createCalls))
		}
	})

	t.Run("rejects tampered price without writing anything", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		gw := &fakeGateway{}
		svc := newOrderService(st, gw, now)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        1,
			CourseName:   "Intro to Go",
		})
		if !errors.Is(err, models.ErrPriceMismatch) {
			t.Fatalf("expected ErrPriceMismatch, got %v", err)
		}
		if len(st.orders) != 0 {
			t.Fatalf("expected no order rows, got %d", len(st.orders))
		}
		if len(gw.createCalls) != 0 {
			t.Fatalf("expected no gateway calls")
		}
	})

	t.Run("rejects unpublished course", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		course := st.courses[courseID]
		course.Published = false
		st.courses[courseID] = course
		svc := newOrderService(st, &fakeGateway{}, now)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        100000,
		})
		if !errors.Is(err, models.ErrCourseNotPublished) {
			t.Fatalf("expected ErrCourseNotPublished, got %v", err)
		}
	})

	t.Run("rejects learner already enrolled", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		st.enrollments["learner-1|"+courseID] = true
		svc := newOrderService(st, &fakeGateway{}, now)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        100000,
		})
		if !errors.Is(err, models.ErrAlreadyEnrolled) {
			t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
		}
	})

	t.Run("retries colliding order codes with a random offset", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		st.dupOrderCodes = 2
		svc := newOrderService(st, &fakeGateway{}, now)

		res, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        100000,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.OrderCode <= now.Unix() {
			t.Fatalf("expected perturbed code > %d, got %d", now.Unix(), res.OrderCode)
		}
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		st.dupOrderCodes = orderCodeRetries
		svc := newOrderService(st, &fakeGateway{}, now)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        100000,
		})
		if !errors.Is(err, models.ErrOrderCodeConflict) {
			t.Fatalf("expected ErrOrderCodeConflict, got %v", err)
		}
	})

	t.Run("gateway failure leaves the order pending", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		gw := &fakeGateway{createErr: &gateway.Error{Status: 503, Code: "down", Desc: "unavailable"}}
		svc := newOrderService(st, gw, now)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        100000,
		})
		var gwErr *gateway.Error
		if !errors.As(err, &gwErr) {
			t.Fatalf("expected gateway error, got %v", err)
		}

		order, err := st.GetOrderByCode(context.Background(), now.Unix())
		if err != nil {
			t.Fatalf("expected order persisted: %v", err)
		}
		if order.Status != models.OrderPending {
			t.Fatalf("expected PENDING, got %s", order.Status)
		}
	})

	t.Run("truncates long course names in the description", func(t *testing.T) {
		st := newFakeStore()
		_, _, courseID := st.seedCatalog(100000)
		gw := &fakeGateway{}
		svc := newOrderService(st, gw, now)

		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CourseID:     courseID,
			LearnerID:    "learner-1",
			InstructorID: "ins-1",
			Price:        100000,
			CourseName:   "Advanced Distributed Systems in Go",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := gw.createCalls[0].Description; len(got) != descriptionLimit {
			t.Fatalf("expected %d-char description, got %q", descriptionLimit, got)
		}
	})
}

func TestOrderService_CancelPayment(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{}
	svc := newOrderService(st, gw, time.Now())

	if err := svc.CancelPayment(context.Background(), 1234, "changed my mind"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(gw.cancelled) != 1 || gw.cancelled[0] != 1234 {
		t.Fatalf("expected cancel call for 1234, got %v", gw.cancelled)
	}
}
