package services

import (
	"context"

	"github.com/ludinhdung/programming-learning-sub003/internal/models"
)

type ValidationStore interface {
	GetCourse(ctx context.Context, id string) (models.Course, error)
	GetInstructor(ctx context.Context, id string) (models.Instructor, error)
	GetWalletByInstructor(ctx context.Context, instructorID string) (models.Wallet, error)
	IsEnrolled(ctx context.Context, learnerID, courseID string) (bool, error)
}

// Validator runs every eligibility check before a checkout writes anything.
// A failed check leaves no partial state behind.
type Validator struct {
	Store ValidationStore
}

type CheckoutContext struct {
	Course     models.Course
	Instructor models.Instructor
	Wallet     models.Wallet
}

// Validate verifies the instructor, wallet, and course exist, that the course
// is published and belongs to the instructor, that the client-submitted price
// matches the course price exactly, and that the learner is not already
// enrolled. The submitted price is never trusted over the stored one.
func (v Validator) Validate(ctx context.Context, courseID, instructorID string, price int64, learnerID string) (CheckoutContext, error) {
	instructor, err := v.Store.GetInstructor(ctx, instructorID)
	if err != nil {
		return CheckoutContext{}, err
	}

	wallet, err := v.Store.GetWalletByInstructor(ctx, instructorID)
	if err != nil {
		return CheckoutContext{}, err
	}

	course, err := v.Store.GetCourse(ctx, courseID)
	if err != nil {
		return CheckoutContext{}, err
	}
	if !course.Published {
		return CheckoutContext{}, models.ErrCourseNotPublished
	}
	if course.InstructorID != instructorID {
		return CheckoutContext{}, models.ErrCourseOwnerMismatch
	}
	if course.Price != price {
		return CheckoutContext{}, models.ErrPriceMismatch
	}

	enrolled, err := v.Store.IsEnrolled(ctx, learnerID, courseID)
	if err != nil {
		return CheckoutContext{}, err
	}
	if enrolled {
		return CheckoutContext{}, models.ErrAlreadyEnrolled
	}

	return CheckoutContext{Course: course, Instructor: instructor, Wallet: wallet}, nil
}
