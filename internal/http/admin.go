package http

import (
	"encoding/json"
	"net/http"

	"github.com/ludinhdung/programming-learning-sub003/internal/models"
	"github.com/ludinhdung/programming-learning-sub003/internal/services"

	"github.com/go-chi/chi/v5"
)

type transactionView struct {
	ID         string `json:"id"`
	WalletID   string `json:"walletId"`
	Amount     int64  `json:"amount"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	Gross      int64  `json:"gross,omitempty"`
	Commission int64  `json:"commission,omitempty"`
}

func transactionResponse(r services.TransactionReport) transactionView {
	return transactionView{
		ID:         r.ID,
		WalletID:   r.WalletID,
		Amount:     r.Amount,
		Type:       string(r.Type),
		Status:     string(r.Status),
		CreatedAt:  formatTime(r.CreatedAt),
		Gross:      r.Gross,
		Commission: r.Commission,
	}
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Wallets.ListTransactions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]transactionView, 0, len(reports))
	for _, rep := range reports {
		views = append(views, transactionResponse(rep))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	report, err := h.Wallets.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse(report))
}

type reviewRequest struct {
	Status string `json:"status"`
}

func (h *Handler) ReviewTransaction(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	status := models.TransactionStatus(req.Status)
	if status != models.TransactionApproved && status != models.TransactionRejected {
		writeError(w, http.StatusBadRequest, "status must be APPROVED or REJECTED")
		return
	}

	tx, err := h.Wallets.Review(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse(services.TransactionReport{LedgerTransaction: tx}))
}
