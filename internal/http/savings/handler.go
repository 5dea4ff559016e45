package savings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/balance"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
	"github.com/lucasblanco/caja/internal/savings"
)

type Handler struct {
	svc *savings.Service
}

func NewHandler(svc *savings.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transfer", h.transfer)
	r.Post("/capitalize", h.capitalize)
}

type transferRequest struct {
	SourceID      string          `json:"sourceId"`
	DestinationID string          `json:"destinationId"`
	NewBucket     string          `json:"newBucket"`
	Amount        decimal.Decimal `json:"amount"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.svc.Transfer(r.Context(), savings.TransferParams{
		SourceID:      req.SourceID,
		DestinationID: req.DestinationID,
		NewBucket:     req.NewBucket,
		Amount:        req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, savings.ErrInsufficientFunds),
			errors.Is(err, savings.ErrInvalidAmount),
			errors.Is(err, savings.ErrNoDestination),
			errors.Is(err, savings.ErrNotSaving):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ledger.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusCreated)
}

type capitalizeRequest struct {
	Period string          `json:"period"`
	ARS    decimal.Decimal `json:"ars"`
	USD    decimal.Decimal `json:"usd"`
}

func (h *Handler) capitalize(w http.ResponseWriter, r *http.Request) {
	var req capitalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := period.Parse(req.Period)
	if err != nil {
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}

	amounts := balance.Amounts{
		ledger.ARS: req.ARS,
		ledger.USD: req.USD,
	}

	if err := h.svc.Capitalize(r.Context(), p, amounts); err != nil {
		if errors.Is(err, savings.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
}
