package services

import (
	"context"
	"log"

	"github.com/ludinhdung/programming-learning-sub003/internal/clock"
	"github.com/ludinhdung/programming-learning-sub003/internal/models"
	"github.com/ludinhdung/programming-learning-sub003/internal/notify"

	"github.com/google/uuid"
)

type SettlementStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderByCode(ctx context.Context, orderCode int64) (models.Order, error)
	GetCourse(ctx context.Context, id string) (models.Course, error)
	GetInstructor(ctx context.Context, id string) (models.Instructor, error)
	GetWalletByInstructor(ctx context.Context, instructorID string) (models.Wallet, error)
	CreateEnrollment(ctx context.Context, learnerID, courseID string) error
	CreateLedgerTransaction(ctx context.Context, tx *models.LedgerTransaction) error
	CreditWallet(ctx context.Context, walletID string, amount int64) error
	CreatePurchase(ctx context.Context, p *models.PurchaseHistory) error
	MarkOrderSuccess(ctx context.Context, orderID string) (bool, error)
}

// SettlementService turns a paid order into an enrollment, a revenue credit,
// and a purchase record, all inside one database transaction.
type SettlementService struct {
	Store      SettlementStore
	Commission CommissionPolicy
	Notifier   notify.Notifier
	Clock      clock.Clock
}

type SettleResult struct {
	Order           models.Order
	AlreadySettled  bool
	InstructorShare int64
}

// Settle is safe under at-least-once, out-of-order webhook delivery. Two
// independent guards make it idempotent: the SUCCESS status check before the
// transaction, and the (learner, course) unique constraint plus the guarded
// status flip inside it.
func (s *SettlementService) Settle(ctx context.Context, orderCode int64) (SettleResult, error) {
	order, err := s.Store.GetOrderByCode(ctx, orderCode)
	if err != nil {
		return SettleResult{}, err
	}
	if order.Status == models.OrderSuccess {
		return SettleResult{Order: order, AlreadySettled: true}, nil
	}

	share := s.Commission.InstructorShare(order.Amount)
	now := s.Clock.Now()

	err = s.Store.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.Store.CreateEnrollment(txCtx, order.UserID, order.CourseID); err != nil {
			return err
		}

		wallet, err := s.Store.GetWalletByInstructor(txCtx, order.InstructorID)
		if err != nil {
			return err
		}

		ledgerTx := &models.LedgerTransaction{
			ID:        uuid.NewString(),
			WalletID:  wallet.ID,
			Amount:    share,
			Type:      models.TransactionRevenue,
			Status:    models.TransactionApproved,
			CreatedAt: now,
		}
		if err := s.Store.CreateLedgerTransaction(txCtx, ledgerTx); err != nil {
			return err
		}
		if err := s.Store.CreditWallet(txCtx, wallet.ID, share); err != nil {
			return err
		}

		purchase := &models.PurchaseHistory{
			ID:        uuid.NewString(),
			LearnerID: order.UserID,
			CourseID:  order.CourseID,
			Price:     order.Amount,
			CreatedAt: now,
		}
		if err := s.Store.CreatePurchase(txCtx, purchase); err != nil {
			return err
		}

		flipped, err := s.Store.MarkOrderSuccess(txCtx, order.ID)
		if err != nil {
			return err
		}
		if !flipped {
			// A concurrent settlement won the race after our status read.
			return models.ErrAlreadySettled
		}
		return nil
	})
	if err != nil {
		return SettleResult{}, err
	}

	order.Status = models.OrderSuccess
	s.notifySettled(ctx, order, share)

	return SettleResult{Order: order, InstructorShare: share}, nil
}

func (s *SettlementService) notifySettled(ctx context.Context, order models.Order, share int64) {
	n := notify.PaymentSettled{
		OrderCode:       order.OrderCode,
		CourseID:        order.CourseID,
		LearnerID:       order.UserID,
		InstructorID:    order.InstructorID,
		Amount:          order.Amount,
		InstructorShare: share,
	}
	if course, err := s.Store.GetCourse(ctx, order.CourseID); err == nil {
		n.CourseName = course.Name
	}
	if instructor, err := s.Store.GetInstructor(ctx, order.InstructorID); err == nil {
		n.InstructorEmail = instructor.Email
	}
	if err := s.Notifier.PublishPaymentSettled(ctx, n); err != nil {
		log.Printf("settlement notification failed (order_code=%d): %v", order.OrderCode, err)
	}
}
