package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ludinhdung/programming-learning-sub003/internal/models"

	"github.com/jackc/pgx/v5"
)

func (s *Store) GetWalletByInstructor(ctx context.Context, instructorID string) (models.Wallet, error) {
	row := s.queryRow(ctx, `
		SELECT id, instructor_id, balance FROM wallets WHERE instructor_id=$1
	`, instructorID)
	return scanWallet(row)
}

// GetWalletForUpdate locks the wallet row for the rest of the enclosing
// transaction. Callers must be inside WithTx.
func (s *Store) GetWalletForUpdate(ctx context.Context, instructorID string) (models.Wallet, error) {
	row := s.queryRow(ctx, `
		SELECT id, instructor_id, balance FROM wallets WHERE instructor_id=$1 FOR UPDATE
	`, instructorID)
	return scanWallet(row)
}

func (s *Store) CreditWallet(ctx context.Context, walletID string, amount int64) error {
	tag, err := s.exec(ctx, `
		UPDATE wallets SET balance = balance + $2 WHERE id=$1
	`, walletID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrWalletNotFound
	}
	return nil
}

// DebitWallet subtracts amount, refusing to take the balance negative.
func (s *Store) DebitWallet(ctx context.Context, walletID string, amount int64) error {
	tag, err := s.exec(ctx, `
		UPDATE wallets SET balance = balance - $2 WHERE id=$1 AND balance >= $2
	`, walletID, amount)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrInsufficientBalance
	}
	return nil
}

func scanWallet(row pgx.Row) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.InstructorID, &w.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Wallet{}, models.ErrWalletNotFound
		}
		return models.Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}

const transactionColumns = `id, wallet_id, amount, type, status, created_at`

func (s *Store) CreateLedgerTransaction(ctx context.Context, tx *models.LedgerTransaction) error {
	_, err := s.exec(ctx, `
		INSERT INTO ledger_transactions (id, wallet_id, amount, type, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, tx.ID, tx.WalletID, tx.Amount, tx.Type, tx.Status, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("create ledger transaction: %w", err)
	}
	return nil
}

func (s *Store) GetLedgerTransaction(ctx context.Context, id string) (models.LedgerTransaction, error) {
	row := s.queryRow(ctx, `
		SELECT `+transactionColumns+` FROM ledger_transactions WHERE id=$1
	`, id)
	return scanTransaction(row)
}

// GetLedgerTransactionForUpdate locks the row so that two concurrent reviews
// of the same transaction serialize. Callers must be inside WithTx.
func (s *Store) GetLedgerTransactionForUpdate(ctx context.Context, id string) (models.LedgerTransaction, error) {
	row := s.queryRow(ctx, `
		SELECT `+transactionColumns+` FROM ledger_transactions WHERE id=$1 FOR UPDATE
	`, id)
	return scanTransaction(row)
}

// UpdateLedgerTransactionStatus advances a PENDING transaction to a terminal
// status. It reports false when the transaction was not PENDING.
func (s *Store) UpdateLedgerTransactionStatus(ctx context.Context, id string, status models.TransactionStatus) (bool, error) {
	tag, err := s.exec(ctx, `
		UPDATE ledger_transactions SET status=$2 WHERE id=$1 AND status=$3
	`, id, status, models.TransactionPending)
	if err != nil {
		return false, fmt.Errorf("update ledger transaction status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListLedgerTransactions(ctx context.Context) ([]models.LedgerTransaction, error) {
	rows, err := s.query(ctx, `
		SELECT `+transactionColumns+` FROM ledger_transactions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list ledger transactions: %w", err)
	}
	defer rows.Close()

	var out []models.LedgerTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (models.LedgerTransaction, error) {
	var t models.LedgerTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.LedgerTransaction{}, models.ErrTransactionNotFound
		}
		return models.LedgerTransaction{}, fmt.Errorf("scan ledger transaction: %w", err)
	}
	return t, nil
}
