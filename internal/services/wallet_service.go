package services

import (
	"context"

	"github.com/ludinhdung/programming-learning-sub003/internal/clock"
	"github.com/ludinhdung/programming-learning-sub003/internal/models"

	"github.com/google/uuid"
)

type WalletStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetWalletForUpdate(ctx context.Context, instructorID string) (models.Wallet, error)
	CreditWallet(ctx context.Context, walletID string, amount int64) error
	DebitWallet(ctx context.Context, walletID string, amount int64) error
	CreateLedgerTransaction(ctx context.Context, tx *models.LedgerTransaction) error
	GetLedgerTransaction(ctx context.Context, id string) (models.LedgerTransaction, error)
	GetLedgerTransactionForUpdate(ctx context.Context, id string) (models.LedgerTransaction, error)
	UpdateLedgerTransactionStatus(ctx context.Context, id string, status models.TransactionStatus) (bool, error)
	ListLedgerTransactions(ctx context.Context) ([]models.LedgerTransaction, error)
}

// WalletService owns the withdrawal state machine. Withdrawal requests
// reserve funds immediately: the balance is debited when the request is
// created, approval only flips the status, and rejection refunds the hold.
type WalletService struct {
	Store      WalletStore
	Commission CommissionPolicy
	Clock      clock.Clock
}

// RequestWithdrawal holds amount from the instructor's balance and records a
// PENDING withdrawal for admin review.
func (s *WalletService) RequestWithdrawal(ctx context.Context, instructorID string, amount int64) (models.LedgerTransaction, error) {
	if amount <= 0 {
		return models.LedgerTransaction{}, models.ErrInvalidAmount
	}

	var tx models.LedgerTransaction
	err := s.Store.WithTx(ctx, func(txCtx context.Context) error {
		wallet, err := s.Store.GetWalletForUpdate(txCtx, instructorID)
		if err != nil {
			return err
		}
		if err := s.Store.DebitWallet(txCtx, wallet.ID, amount); err != nil {
			return err
		}

		tx = models.LedgerTransaction{
			ID:        uuid.NewString(),
			WalletID:  wallet.ID,
			Amount:    amount,
			Type:      models.TransactionWithdrawal,
			Status:    models.TransactionPending,
			CreatedAt: s.Clock.Now(),
		}
		return s.Store.CreateLedgerTransaction(txCtx, &tx)
	})
	if err != nil {
		return models.LedgerTransaction{}, err
	}
	return tx, nil
}

// Review advances a PENDING withdrawal to APPROVED or REJECTED. Both are
// terminal. Approval pays out the already-held funds so the balance does not
// move; rejection returns the hold to the wallet.
func (s *WalletService) Review(ctx context.Context, id string, status models.TransactionStatus) (models.LedgerTransaction, error) {
	if status != models.TransactionApproved && status != models.TransactionRejected {
		return models.LedgerTransaction{}, models.ErrInvalidTransition
	}

	var reviewed models.LedgerTransaction
	err := s.Store.WithTx(ctx, func(txCtx context.Context) error {
		tx, err := s.Store.GetLedgerTransactionForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if tx.Type != models.TransactionWithdrawal || tx.Status != models.TransactionPending {
			return models.ErrInvalidTransition
		}

		flipped, err := s.Store.UpdateLedgerTransactionStatus(txCtx, id, status)
		if err != nil {
			return err
		}
		if !flipped {
			return models.ErrInvalidTransition
		}

		if status == models.TransactionRejected {
			if err := s.Store.CreditWallet(txCtx, tx.WalletID, tx.Amount); err != nil {
				return err
			}
		}

		tx.Status = status
		reviewed = tx
		return nil
	})
	if err != nil {
		return models.LedgerTransaction{}, err
	}
	return reviewed, nil
}

// TransactionReport decorates a ledger row with derived revenue figures.
// Gross and commission are recomputed with the settlement rounding policy,
// never stored.
type TransactionReport struct {
	models.LedgerTransaction
	Gross      int64
	Commission int64
}

func (s *WalletService) GetTransaction(ctx context.Context, id string) (TransactionReport, error) {
	tx, err := s.Store.GetLedgerTransaction(ctx, id)
	if err != nil {
		return TransactionReport{}, err
	}
	return s.report(tx), nil
}

func (s *WalletService) ListTransactions(ctx context.Context) ([]TransactionReport, error) {
	txs, err := s.Store.ListLedgerTransactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionReport, 0, len(txs))
	for _, tx := range txs {
		out = append(out, s.report(tx))
	}
	return out, nil
}

func (s *WalletService) report(tx models.LedgerTransaction) TransactionReport {
	r := TransactionReport{LedgerTransaction: tx}
	if tx.Type == models.TransactionRevenue {
		r.Gross = s.Commission.GrossFromNet(tx.Amount)
		r.Commission = r.Gross - tx.Amount
	}
	return r
}
