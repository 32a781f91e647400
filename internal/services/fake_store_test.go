package services

import (
	"context"
	"time"

	"github.com/ludinhdung/programming-learning-sub003/internal/models"
)

// fakeStore is an in-memory stand-in for the Postgres store. WithTx snapshots
// the state and restores it when fn fails, mirroring a real rollback.
type fakeStore struct {
	courses     map[string]models.Course
	instructors map[string]models.Instructor
	wallets     map[string]*models.Wallet
	walletByIns map[string]string
	orders      map[string]*models.Order
	orderByCode map[int64]string
	enrollments map[string]bool
	ledger      map[string]*models.LedgerTransaction
	purchases   []models.PurchaseHistory

	// dupOrderCodes makes the next N CreateOrder calls fail with a
	// duplicate-code violation.
	dupOrderCodes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		courses:     make(map[string]models.Course),
		instructors: make(map[string]models.Instructor),
		wallets:     make(map[string]*models.Wallet),
		walletByIns: make(map[string]string),
		orders:      make(map[string]*models.Order),
		orderByCode: make(map[int64]string),
		enrollments: make(map[string]bool),
		ledger:      make(map[string]*models.LedgerTransaction),
	}
}

func (f *fakeStore) seedCatalog(price int64) (instructorID, walletID, courseID string) {
	instructorID, walletID, courseID = "ins-1", "wal-1", "crs-1"
	f.instructors[instructorID] = models.Instructor{ID: instructorID, Email: "instructor@example.com"}
	f.wallets[walletID] = &models.Wallet{ID: walletID, InstructorID: instructorID}
	f.walletByIns[instructorID] = walletID
	f.courses[courseID] = models.Course{
		ID:           courseID,
		InstructorID: instructorID,
		Name:         "Intro to Go",
		Price:        price,
		Published:    true,
	}
	return
}

func (f *fakeStore) seedOrder(code int64, courseID, learnerID, instructorID string, amount int64) *models.Order {
	order := &models.Order{
		ID:           "ord-1",
		OrderCode:    code,
		CourseID:     courseID,
		UserID:       learnerID,
		InstructorID: instructorID,
		Amount:       amount,
		Status:       models.OrderPending,
		CreatedAt:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.orders[order.ID] = order
	f.orderByCode[code] = order.ID
	return order
}

func (f *fakeStore) snapshot() *fakeStore {
	s := newFakeStore()
	for k, v := range f.courses {
		s.courses[k] = v
	}
	for k, v := range f.instructors {
		s.instructors[k] = v
	}
	for k, v := range f.wallets {
		w := *v
		s.wallets[k] = &w
	}
	for k, v := range f.walletByIns {
		s.walletByIns[k] = v
	}
	for k, v := range f.orders {
		o := *v
		s.orders[k] = &o
	}
	for k, v := range f.orderByCode {
		s.orderByCode[k] = v
	}
	for k, v := range f.enrollments {
		s.enrollments[k] = v
	}
	for k, v := range f.ledger {
		t := *v
		s.ledger[k] = &t
	}
	s.purchases = append(s.purchases, f.purchases...)
	return s
}

func (f *fakeStore) restore(s *fakeStore) {
	f.courses = s.courses
	f.instructors = s.instructors
	f.wallets = s.wallets
	f.walletByIns = s.walletByIns
	f.orders = s.orders
	f.orderByCode = s.orderByCode
	f.enrollments = s.enrollments
	f.ledger = s.ledger
	f.purchases = s.purchases
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.snapshot()
	if err := fn(ctx); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) GetCourse(_ context.Context, id string) (models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return models.Course{}, models.ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeStore) GetInstructor(_ context.Context, id string) (models.Instructor, error) {
	ins, ok := f.instructors[id]
	if !ok {
		return models.Instructor{}, models.ErrInstructorNotFound
	}
	return ins, nil
}

func (f *fakeStore) GetWalletByInstructor(_ context.Context, instructorID string) (models.Wallet, error) {
	id, ok := f.walletByIns[instructorID]
	if !ok {
		return models.Wallet{}, models.ErrWalletNotFound
	}
	return *f.wallets[id], nil
}

func (f *fakeStore) GetWalletForUpdate(ctx context.Context, instructorID string) (models.Wallet, error) {
	return f.GetWalletByInstructor(ctx, instructorID)
}

func (f *fakeStore) IsEnrolled(_ context.Context, learnerID, courseID string) (bool, error) {
	return f.enrollments[learnerID+"|"+courseID], nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order) error {
	if f.dupOrderCodes > 0 {
		f.dupOrderCodes--
		return models.ErrDuplicateOrderCode
	}
	if _, exists := f.orderByCode[order.OrderCode]; exists {
		return models.ErrDuplicateOrderCode
	}
	o := *order
	f.orders[o.ID] = &o
	f.orderByCode[o.OrderCode] = o.ID
	return nil
}

func (f *fakeStore) GetOrderByCode(_ context.Context, code int64) (models.Order, error) {
	id, ok := f.orderByCode[code]
	if !ok {
		return models.Order{}, models.ErrOrderNotFound
	}
	return *f.orders[id], nil
}

func (f *fakeStore) MarkOrderSuccess(_ context.Context, orderID string) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.Status != models.OrderPending {
		return false, nil
	}
	o.Status = models.OrderSuccess
	return true, nil
}

func (f *fakeStore) CreateEnrollment(_ context.Context, learnerID, courseID string) error {
	key := learnerID + "|" + courseID
	if f.enrollments[key] {
		return models.ErrAlreadyEnrolled
	}
	f.enrollments[key] = true
	return nil
}

func (f *fakeStore) CreateLedgerTransaction(_ context.Context, tx *models.LedgerTransaction) error {
	t := *tx
	f.ledger[t.ID] = &t
	return nil
}

func (f *fakeStore) CreditWallet(_ context.Context, walletID string, amount int64) error {
	w, ok := f.wallets[walletID]
	if !ok {
		return models.ErrWalletNotFound
	}
	w.Balance += amount
	return nil
}

func (f *fakeStore) DebitWallet(_ context.Context, walletID string, amount int64) error {
	w, ok := f.wallets[walletID]
	if !ok || w.Balance < amount {
		return models.ErrInsufficientBalance
	}
	w.Balance -= amount
	return nil
}

func (f *fakeStore) CreatePurchase(_ context.Context, p *models.PurchaseHistory) error {
	f.purchases = append(f.purchases, *p)
	return nil
}

func (f *fakeStore) GetLedgerTransaction(_ context.Context, id string) (models.LedgerTransaction, error) {
	t, ok := f.ledger[id]
	if !ok {
		return models.LedgerTransaction{}, models.ErrTransactionNotFound
	}
	return *t, nil
}

func (f *fakeStore) GetLedgerTransactionForUpdate(ctx context.Context, id string) (models.LedgerTransaction, error) {
	return f.GetLedgerTransaction(ctx, id)
}

func (f *fakeStore) UpdateLedgerTransactionStatus(_ context.Context, id string, status models.TransactionStatus) (bool, error) {
	t, ok := f.ledger[id]
	if !ok || t.Status != models.TransactionPending {
		return false, nil
	}
	t.Status = status
	return true, nil
}

func (f *fakeStore) ListLedgerTransactions(_ context.Context) ([]models.LedgerTransaction, error) {
	out := make([]models.LedgerTransaction, 0, len(f.ledger))
	for _, t := range f.ledger {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) wallet(id string) models.Wallet {
	return *f.wallets[id]
}
