package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ludinhdung/programming-learning-sub003/internal/models"

	"github.com/jackc/pgx/v5"
)

func (s *Store) GetCourse(ctx context.Context, id string) (models.Course, error) {
	row := s.queryRow(ctx, `
		SELECT id, instructor_id, name, price, published FROM courses WHERE id=$1
	`, id)

	var c models.Course
	err := row.Scan(&c.ID, &c.InstructorID, &c.Name, &c.Price, &c.Published)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Course{}, models.ErrCourseNotFound
		}
		return models.Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

func (s *Store) GetInstructor(ctx context.Context, id string) (models.Instructor, error) {
	row := s.queryRow(ctx, `
		SELECT id, email FROM instructors WHERE id=$1
	`, id)

	var ins models.Instructor
	err := row.Scan(&ins.ID, &ins.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Instructor{}, models.ErrInstructorNotFound
		}
		return models.Instructor{}, fmt.Errorf("get instructor: %w", err)
	}
	return ins, nil
}

func (s *Store) IsEnrolled(ctx context.Context, learnerID, courseID string) (bool, error) {
	var exists bool
	row := s.queryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM enrolled_courses WHERE learner_id=$1 AND course_id=$2)
	`, learnerID, courseID)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// CreateEnrollment inserts the (learner, course) row. The unique constraint on
// that pair is the primary idempotency guard for settlement: a duplicate maps
// to ErrAlreadyEnrolled and aborts the enclosing transaction.
func (s *Store) CreateEnrollment(ctx context.Context, learnerID, courseID string) error {
	_, err := s.exec(ctx, `
		INSERT INTO enrolled_courses (learner_id, course_id, progress)
		VALUES ($1,$2,0)
	`, learnerID, courseID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrAlreadyEnrolled
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (s *Store) CreatePurchase(ctx context.Context, p *models.PurchaseHistory) error {
	_, err := s.exec(ctx, `
		INSERT INTO purchase_histories (id, learner_id, course_id, price, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, p.ID, p.LearnerID, p.CourseID, p.Price, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}
