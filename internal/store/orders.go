package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ludinhdung/programming-learning-sub003/internal/models"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, order_code, course_id, user_id, instructor_id, amount, status, created_at`

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := s.exec(ctx, `
		INSERT INTO orders (id, order_code, course_id, user_id, instructor_id, amount, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		order.ID,
		order.OrderCode,
		order.CourseID,
		order.UserID,
		order.InstructorID,
		order.Amount,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateOrderCode
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *Store) GetOrderByCode(ctx context.Context, orderCode int64) (models.Order, error) {
	row := s.queryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE order_code=$1
	`, orderCode)
	return scanOrder(row)
}

// MarkOrderSuccess flips a PENDING order to SUCCESS. It reports false when the
// order was not PENDING anymore, which lets a concurrent settlement detect
// that it lost the race.
func (s *Store) MarkOrderSuccess(ctx context.Context, orderID string) (bool, error) {
	tag, err := s.exec(ctx, `
		UPDATE orders SET status=$2 WHERE id=$1 AND status=$3
	`, orderID, models.OrderSuccess, models.OrderPending)
	if err != nil {
		return false, fmt.Errorf("mark order success: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkOrderCancelled(ctx context.Context, orderID string) (bool, error) {
	tag, err := s.exec(ctx, `
		UPDATE orders SET status=$2 WHERE id=$1 AND status=$3
	`, orderID, models.OrderCancelled, models.OrderPending)
	if err != nil {
		return false, fmt.Errorf("mark order cancelled: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListPendingOrdersBefore returns PENDING orders created before cutoff, for
// the reconciliation worker.
func (s *Store) ListPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	rows, err := s.query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status=$1 AND created_at < $2
		ORDER BY created_at
	`, models.OrderPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.OrderCode,
		&o.CourseID,
		&o.UserID,
		&o.InstructorID,
		&o.Amount,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, models.ErrOrderNotFound
		}
		return models.Order{}, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}
