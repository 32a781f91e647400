package models

import "errors"

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseNotPublished  = errors.New("course not published")
	ErrCourseOwnerMismatch = errors.New("course does not belong to instructor")
	ErrInstructorNotFound  = errors.New("instructor not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrPriceMismatch       = errors.New("price does not match course price")
	ErrAlreadyEnrolled     = errors.New("already enrolled")

	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateOrderCode = errors.New("duplicate order code")
	ErrOrderCodeConflict  = errors.New("order code space exhausted")
	ErrAlreadySettled     = errors.New("order already settled")

	ErrInvalidAmount       = errors.New("invalid amount")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
