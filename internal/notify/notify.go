// Package notify publishes settlement-adjacent notifications. Delivery is
// fire-and-forget: a failed publish is logged by the caller and never affects
// the financial outcome.
package notify

import "context"

type PaymentSettled struct {
	OrderCode       int64  `json:"orderCode"`
	CourseID        string `json:"courseId"`
	CourseName      string `json:"courseName,omitempty"`
	LearnerID       string `json:"learnerId"`
	InstructorID    string `json:"instructorId"`
	InstructorEmail string `json:"instructorEmail,omitempty"`
	Amount          int64  `json:"amount"`
	InstructorShare int64  `json:"instructorShare"`
}

type Notifier interface {
	PublishPaymentSettled(ctx context.Context, n PaymentSettled) error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) PublishPaymentSettled(ctx context.Context, n PaymentSettled) error {
	return nil
}
