package agreement

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/agreement"
	"github.com/lucasblanco/caja/internal/invoicing"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

type Handler struct {
	svc      *agreement.Service
	invoices *invoicing.Engine
}

func NewHandler(svc *agreement.Service, invoices *invoicing.Engine) *Handler {
	return &Handler{svc: svc, invoices: invoices}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.deactivate)
	r.Post("/{id}/invoices/{period}", h.bill)
	r.Delete("/{id}/invoices/{period}", h.unbill)
}

type createAgreementRequest struct {
	Name        string              `json:"name"`
	CUIT        string              `json:"cuit"`
	Description string              `json:"description"`
	Frequency   agreement.Frequency `json:"frequency"`
	Currency    ledger.Currency     `json:"currency"`
	Amount      decimal.Decimal     `json:"amount"`
	HasInvoice  bool                `json:"hasInvoice"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ag, err := h.svc.Create(r.Context(), agreement.CreateParams{
		Name:        req.Name,
		CUIT:        req.CUIT,
		Description: req.Description,
		Frequency:   req.Frequency,
		Currency:    req.Currency,
		Amount:      req.Amount,
		HasInvoice:  req.HasInvoice,
	})
	if err != nil {
		if errors.Is(err, agreement.ErrUnknownFrequency) || errors.Is(err, ledger.ErrUnknownCurrency) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusCreated, ag)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ags, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ags)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ag, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, agreement.ErrNotFound) {
			http.Error(w, "agreement not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, ag)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ag, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, agreement.ErrNotFound) {
			http.Error(w, "agreement not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	var req createAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ag.Name = req.Name
	ag.CUIT = req.CUIT
	ag.Description = req.Description
	ag.Amount = req.Amount
	ag.HasInvoice = req.HasInvoice

	if err := h.svc.Update(r.Context(), ag); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ag)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, agreement.ErrNotFound) {
			http.Error(w, "agreement not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type billRequest struct {
	ConvertTo ledger.Currency `json:"convertTo"`
	Rate      decimal.Decimal `json:"rate"`
}

func (h *Handler) bill(w http.ResponseWriter, r *http.Request) {
	ag, p, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var conv *invoicing.Conversion

	if r.ContentLength > 0 {
		var req billRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if req.ConvertTo != "" {
			conv = &invoicing.Conversion{To: req.ConvertTo, Rate: req.Rate}
		}
	}

	tx, err := h.invoices.Bill(r.Context(), ag, p, conv)
	if err != nil {
		switch {
		case errors.Is(err, invoicing.ErrAlreadyBilled):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, invoicing.ErrInvalidRate):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"incomeId": tx.ID, "agreement": ag})
}

func (h *Handler) unbill(w http.ResponseWriter, r *http.Request) {
	ag, p, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.invoices.Unbill(r.Context(), ag, p); err != nil {
		if errors.Is(err, invoicing.ErrNotBilled) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*agreement.Agreement, period.Period, bool) {
	p, err := period.Parse(chi.URLParam(r, "period"))
	if err != nil {
		http.Error(w, "invalid period", http.StatusBadRequest)
		return nil, period.Period{}, false
	}

	ag, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, agreement.ErrNotFound) {
			http.Error(w, "agreement not found", http.StatusNotFound)
			return nil, period.Period{}, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, period.Period{}, false
	}

	return ag, p, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
