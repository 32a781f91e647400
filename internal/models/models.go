package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderSuccess   OrderStatus = "SUCCESS"
	OrderCancelled OrderStatus = "CANCELLED"
)

type TransactionType string

const (
	TransactionRevenue    TransactionType = "REVENUE"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "PENDING"
	TransactionApproved TransactionStatus = "APPROVED"
	TransactionRejected TransactionStatus = "REJECTED"
)

// Order tracks one checkout attempt against the payment provider.
// OrderCode is the provider-visible identifier and is globally unique.
type Order struct {
	ID           string
	OrderCode    int64
	CourseID     string
	UserID       string
	InstructorID string
	Amount       int64
	Status       OrderStatus
	CreatedAt    time.Time
}

// Wallet holds an instructor's running balance in minor currency units.
// The balance is only ever changed through ledger transactions.
type Wallet struct {
	ID           string
	InstructorID string
	Balance      int64
}

type LedgerTransaction struct {
	ID        string
	WalletID  string
	Amount    int64
	Type      TransactionType
	Status    TransactionStatus
	CreatedAt time.Time
}

type EnrolledCourse struct {
	LearnerID string
	CourseID  string
	Progress  int
}

type PurchaseHistory struct {
	ID        string
	LearnerID string
	CourseID  string
	Price     int64
	CreatedAt time.Time
}

// Course is a read model owned by the content subsystem.
type Course struct {
	ID           string
	InstructorID string
	Name         string
	Price        int64
	Published    bool
}

type Instructor struct {
	ID    string
	Email string
}
