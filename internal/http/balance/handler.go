package balance

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lucasblanco/caja/internal/balance"
	"github.com/lucasblanco/caja/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
}

type summaryResponse struct {
	Totals     balance.Totals      `json:"totals"`
	Sheet      balance.Sheet       `json:"sheet"`
	Suggestion *balance.Suggestion `json:"suggestion,omitempty"`
}

// summary reports the filtered period's totals, the historical position as
// of the period's end, and the surplus suggestion when one applies.
// Filter query params: kind=all|year|quarter|month plus year, month, quarter.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := summaryResponse{
		Totals: balance.TotalsFor(txs, filter),
		Sheet:  balance.AsOf(txs, filter.End(time.Now().UTC())),
	}

	if sug, ok := balance.SuggestCapitalization(txs, filter); ok {
		resp.Suggestion = &sug
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func parseFilter(r *http.Request) (balance.Filter, error) {
	q := r.URL.Query()

	filter := balance.Filter{Kind: balance.FilterKind(q.Get("kind"))}
	if filter.Kind == "" {
		filter.Kind = balance.FilterAll
	}

	if s := q.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return balance.Filter{}, err
		}

		filter.Year = year
	}

	if s := q.Get("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil {
			return balance.Filter{}, err
		}

		filter.Month = time.Month(month)
	}

	if s := q.Get("quarter"); s != "" {
		quarter, err := strconv.Atoi(s)
		if err != nil {
			return balance.Filter{}, err
		}

		filter.Quarter = quarter
	}

	return filter, nil
}
