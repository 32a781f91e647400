package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ludinhdung/programming-learning-sub003/internal/auth"
	"github.com/ludinhdung/programming-learning-sub003/internal/gateway"
	"github.com/ludinhdung/programming-learning-sub003/internal/models"
	"github.com/ludinhdung/programming-learning-sub003/internal/services"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Orders     *services.OrderService
	Settlement *services.SettlementService
	Wallets    *services.WalletService
	Gateway    gateway.Gateway
}

func NewHandler(orders *services.OrderService, settlement *services.SettlementService, wallets *services.WalletService, gw gateway.Gateway) *Handler {
	return &Handler{Orders: orders, Settlement: settlement, Wallets: wallets, Gateway: gw}
}

type createPaymentRequest struct {
	CourseID     string `json:"courseId"`
	Price        int64  `json:"price"`
	InstructorID string `json:"instructorId"`
	CourseName   string `json:"courseName"`
}

type createPaymentResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
	OrderCode   int64  `json:"orderCode"`
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	identity := auth.FromContext(r.Context())
	result, err := h.Orders.CreateOrder(r.Context(), services.CreateOrderInput{
		CourseID:     req.CourseID,
		LearnerID:    identity.UserID,
		InstructorID: req.InstructorID,
		Price:        req.Price,
		CourseName:   req.CourseName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createPaymentResponse{
		CheckoutURL: result.CheckoutURL,
		OrderCode:   result.OrderCode,
		OrderID:     result.OrderID,
		Amount:      result.Amount,
	})
}

func (h *Handler) PaymentInfo(w http.ResponseWriter, r *http.Request) {
	orderCode, ok := orderCodeParam(w, r)
	if !ok {
		return
	}

	info, err := h.Orders.PaymentInfo(r.Context(), orderCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orderCode":  info.OrderCode,
		"amount":     info.Amount,
		"amountPaid": info.AmountPaid,
		"status":     info.Status,
		"reference":  info.Reference,
	})
}

type cancelPaymentRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	orderCode, ok := orderCodeParam(w, r)
	if !ok {
		return
	}

	var req cancelPaymentRequest
	if r.Body != nil {
		// Reason is optional; an empty or malformed body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.Orders.CancelPayment(r.Context(), orderCode, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "payment cancelled")
}

// Webhook verifies the provider signature, settles the order, and always
// returns a definitive acknowledgment once the event is verified, so the
// provider stops retrying. Only signature failures are client errors.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	event, err := h.Gateway.VerifyWebhook(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	if !event.Success {
		log.Printf("webhook: ignoring unsuccessful payment event (order_code=%d code=%s)", event.OrderCode, event.Code)
		writeMessage(w, http.StatusOK, "event ignored")
		return
	}

	result, err := h.Settlement.Settle(r.Context(), event.OrderCode)
	switch {
	case err == nil:
		if result.AlreadySettled {
			writeMessage(w, http.StatusOK, "order already settled")
			return
		}
		writeMessage(w, http.StatusOK, "payment settled")
	case errors.Is(err, models.ErrOrderNotFound):
		// Unknown order codes must not be retried forever by the provider.
		log.Printf("webhook: order not found (order_code=%d)", event.OrderCode)
		writeMessage(w, http.StatusOK, "order not found")
	case errors.Is(err, models.ErrAlreadySettled):
		writeMessage(w, http.StatusOK, "order already settled")
	case errors.Is(err, models.ErrAlreadyEnrolled):
		// The learner got the course through another path; nothing was
		// applied and retrying cannot succeed.
		log.Printf("webhook: settlement aborted, learner already enrolled (order_code=%d)", event.OrderCode)
		writeMessage(w, http.StatusOK, "already enrolled")
	default:
		log.Printf("webhook: settlement failed (order_code=%d): %v", event.OrderCode, err)
		writeError(w, http.StatusInternalServerError, "settlement failed")
	}
}

type withdrawalRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	identity := auth.FromContext(r.Context())
	tx, err := h.Wallets.RequestWithdrawal(r.Context(), identity.UserID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionResponse(services.TransactionReport{LedgerTransaction: tx}))
}

func orderCodeParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "orderCode")
	code, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || code <= 0 {
		writeError(w, http.StatusBadRequest, "invalid order code")
		return 0, false
	}
	return code, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var gwErr *gateway.Error
	switch {
	case errors.Is(err, models.ErrCourseNotFound),
		errors.Is(err, models.ErrInstructorNotFound),
		errors.Is(err, models.ErrWalletNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrCourseNotPublished),
		errors.Is(err, models.ErrCourseOwnerMismatch),
		errors.Is(err, models.ErrPriceMismatch),
		errors.Is(err, models.ErrAlreadyEnrolled),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrOrderCodeConflict),
		errors.Is(err, models.ErrAlreadySettled),
		errors.Is(err, models.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &gwErr):
		log.Printf("gateway failure: %v", gwErr)
		writeError(w, http.StatusBadGateway, "payment provider unavailable")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
