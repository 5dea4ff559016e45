// Package agreement models standing billing arrangements. An agreement can
// generate one income transaction per billing period, either automatically or
// through a manual invoice toggle.
package agreement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

// Frequency is how often an agreement bills.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyOneTime Frequency = "one_time"
)

// InvoiceRecord marks a billed period and the income transaction it produced.
type InvoiceRecord struct {
	Sent     bool      `json:"sent"`
	Date     time.Time `json:"date"`
	IncomeID string    `json:"incomeId"`
}

// Agreement is a recurring billing arrangement independent of any single
// transaction. Agreements are never hard-deleted, only deactivated.
type Agreement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	CUIT        string          `json:"cuit,omitempty"`
	Description string          `json:"description,omitempty"`
	Frequency   Frequency       `json:"frequency"`
	Currency    ledger.Currency `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`

	// HasInvoice means the agreement is billed via a formal invoice and
	// requires manual confirmation per period. Agreements without it are
	// generated automatically each month.
	HasInvoice bool `json:"hasInvoice"`
	IsActive   bool `json:"isActive"`

	// Invoices is the append-only ledger of billed periods, keyed by the
	// period's "YYYY-MM" key. Access goes through the Period-typed methods.
	Invoices map[string]InvoiceRecord `json:"invoices,omitempty"`
}

// Invoice returns the invoice record for the given period, if any.
func (a *Agreement) Invoice(p period.Period) (InvoiceRecord, bool) {
	rec, ok := a.Invoices[p.Key()]
	return rec, ok
}

// Billed reports whether the given period has been billed.
func (a *Agreement) Billed(p period.Period) bool {
	rec, ok := a.Invoice(p)
	return ok && rec.Sent
}

// BilledPeriods returns the billed periods in chronological order.
func (a *Agreement) BilledPeriods() []period.Period {
	out := make([]period.Period, 0, len(a.Invoices))

	for key := range a.Invoices {
		p, err := period.Parse(key)
		if err != nil {
			continue
		}

		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	return out
}
