// Package balance computes period KPIs and point-in-time balances from the
// transaction set. All functions are pure: they aggregate a snapshot and
// never mutate it.
//
// Aggregation is strictly per-currency. No implicit FX conversion happens
// here; conversion only exists in the explicit invoicing currency-swap flow.
package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/ledger"
)

// Amounts holds one decimal bucket per currency.
type Amounts map[ledger.Currency]decimal.Decimal

// Get returns the bucket for c, zero if absent.
func (a Amounts) Get(c ledger.Currency) decimal.Decimal {
	v, ok := a[c]
	if !ok {
		return decimal.Zero
	}

	return v
}

func (a Amounts) add(c ledger.Currency, d decimal.Decimal) {
	a[c] = a.Get(c).Add(d)
}

// IsZero reports whether every bucket is zero.
func (a Amounts) IsZero() bool {
	for _, v := range a {
		if !v.IsZero() {
			return false
		}
	}

	return true
}

// Totals are the filtered period's KPIs: what happened during the period,
// independent of history.
type Totals struct {
	Income         Amounts
	PendingIncome  Amounts
	Expense        Amounts
	PendingExpense Amounts
}

// TotalsFor sums income and expense movements dated within the filter's
// range, split into total vs. not-yet-paid. Savings do not participate.
func TotalsFor(txs []*ledger.Transaction, f Filter) Totals {
	t := Totals{
		Income:         Amounts{},
		PendingIncome:  Amounts{},
		Expense:        Amounts{},
		PendingExpense: Amounts{},
	}

	for _, tx := range txs {
		if !f.includes(tx.Date) {
			continue
		}

		switch tx.Type {
		case ledger.TypeIncome:
			t.Income.add(tx.Currency, tx.Amount)

			if tx.Status != ledger.StatusPaid {
				t.PendingIncome.add(tx.Currency, tx.Amount)
			}
		case ledger.TypeExpense:
			t.Expense.add(tx.Currency, tx.Amount)

			if tx.Status != ledger.StatusPaid {
				t.PendingExpense.add(tx.Currency, tx.Amount)
			}
		}
	}

	return t
}

// Sheet is the historical position as of a cutoff date.
type Sheet struct {
	Cash     Amounts
	Savings  Amounts
	NetWorth Amounts
}

// AsOf derives the cash and savings position from every transaction dated on
// or before the cutoff.
//
// Cash counts paid income minus paid expense, minus savings entries whose
// value actually left cash. Savings entries tagged isInitial are transfer or
// capitalization legs whose value already reduced cash once (or never touched
// it), so subtracting them again would double count. The savings balance sums
// every saving entry not yet marked used, isInitial legs included.
//
// The cutoff is inclusive through its whole calendar day, so entries
// timestamped intra-day on a period's last day still count.
func AsOf(txs []*ledger.Transaction, cutoff time.Time) Sheet {
	sheet := Sheet{Cash: Amounts{}, Savings: Amounts{}, NetWorth: Amounts{}}

	limit := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	for _, tx := range txs {
		if tx.Date.IsZero() || !tx.Date.Before(limit) {
			continue
		}

		switch tx.Type {
		case ledger.TypeIncome:
			if tx.Status == ledger.StatusPaid {
				sheet.Cash.add(tx.Currency, tx.Amount)
			}
		case ledger.TypeExpense:
			if tx.Status == ledger.StatusPaid {
				sheet.Cash.add(tx.Currency, tx.Amount.Neg())
			}
		case ledger.TypeSaving:
			if !tx.IsInitial {
				sheet.Cash.add(tx.Currency, tx.Amount.Neg())
			}

			if tx.Status != ledger.StatusUsed {
				sheet.Savings.add(tx.Currency, tx.Amount)
			}
		}
	}

	for _, c := range ledger.Currencies {
		sheet.NetWorth[c] = sheet.Cash.Get(c).Add(sheet.Savings.Get(c))
	}

	return sheet
}

// Suggestion is a proposed surplus capitalization for a single month.
type Suggestion struct {
	Amounts Amounts
}

// SuggestCapitalization proposes moving the filtered month's cash surplus
// into savings. The suggestion per currency is capped at the cash actually
// available as of the month's end, and is suppressed entirely unless the
// filter resolves to exactly one calendar month.
func SuggestCapitalization(txs []*ledger.Transaction, f Filter) (Suggestion, bool) {
	p, ok := f.SingleMonth()
	if !ok {
		return Suggestion{}, false
	}

	totals := TotalsFor(txs, f)
	sheet := AsOf(txs, p.End())

	out := Amounts{}

	for _, c := range ledger.Currencies {
		paidIncome := totals.Income.Get(c).Sub(totals.PendingIncome.Get(c))
		paidExpense := totals.Expense.Get(c).Sub(totals.PendingExpense.Get(c))
		surplus := paidIncome.Sub(paidExpense)
		available := sheet.Cash.Get(c)

		if surplus.IsPositive() && available.IsPositive() {
			out[c] = decimal.Min(surplus, available)
		}
	}

	if out.IsZero() {
		return Suggestion{}, false
	}

	return Suggestion{Amounts: out}, true
}
