// Package invoicing binds an agreement's per-period "billed" state to the
// creation or deletion of the income transaction backing it.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/agreement"
	"github.com/lucasblanco/caja/internal/guard"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

var (
	ErrAlreadyBilled = errors.New("period already billed")
	ErrNotBilled     = errors.New("period not billed")
	ErrInvalidRate   = errors.New("exchange rate must be positive")
)

// Conversion requests billing in a currency other than the agreement's, at a
// caller-supplied ARS-per-USD rate.
type Conversion struct {
	To   ledger.Currency
	Rate decimal.Decimal
}

// Engine creates and reverts agreement-billed income transactions.
type Engine struct {
	ledger     ledger.Store
	agreements agreement.Store
	gate       guard.Gate
	now        func() time.Time
}

func New(ledgerStore ledger.Store, agreementStore agreement.Store) *Engine {
	return &Engine{ledger: ledgerStore, agreements: agreementStore, now: time.Now}
}

// WithClock overrides the engine's clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Bill marks the period as billed: it creates a paid income transaction for
// the agreement's amount (converted if requested) and records the invoice
// entry on the agreement.
func (e *Engine) Bill(ctx context.Context, ag *agreement.Agreement, p period.Period, conv *Conversion) (*ledger.Transaction, error) {
	if ag.Billed(p) {
		return nil, ErrAlreadyBilled
	}

	amount := ag.Amount
	currency := ag.Currency
	description := fmt.Sprintf("%s invoice %s", ag.Name, p.Key())

	if conv != nil && conv.To != ag.Currency {
		converted, err := convert(ag.Amount, ag.Currency, conv.To, conv.Rate)
		if err != nil {
			return nil, err
		}

		amount = converted
		currency = conv.To
		description = fmt.Sprintf("%s (rate %s)", description, conv.Rate.String())
	}

	return e.createIncome(ctx, ag, p, amount, currency, ledger.StatusPaid, description)
}

// Unbill reverts a billed period: it deletes the linked income transaction
// and removes the invoice entry. The caller is responsible for confirming
// the destructive action first.
func (e *Engine) Unbill(ctx context.Context, ag *agreement.Agreement, p period.Period) error {
	rec, ok := ag.Invoice(p)
	if !ok {
		return ErrNotBilled
	}

	if rec.IncomeID != "" {
		if err := e.ledger.Delete(ctx, rec.IncomeID); err != nil && !errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("deleting invoice income: %w", err)
		}
	}

	if err := e.agreements.ClearInvoice(ctx, ag.ID, p); err != nil {
		return fmt.Errorf("clearing invoice entry: %w", err)
	}

	delete(ag.Invoices, p.Key())

	return nil
}

// ProcessMonthly runs the unattended billing pass: every active monthly
// agreement without a formal invoice that has not yet been billed for the
// current period gets a pending income in its native currency. Each write
// re-triggers the agreement subscription, so a pass invoked while another is
// in flight is dropped.
func (e *Engine) ProcessMonthly(ctx context.Context, ags []*agreement.Agreement) (int, error) {
	if !e.gate.TryAcquire() {
		slog.Debug("agreement pass already in flight, dropping")
		return 0, nil
	}
	defer e.gate.Release()

	cur := period.Of(e.now())
	processed := 0

	var firstErr error

	for _, ag := range ags {
		if !ag.IsActive || ag.HasInvoice || ag.Frequency != agreement.FrequencyMonthly {
			continue
		}

		if ag.Billed(cur) {
			continue
		}

		description := fmt.Sprintf("%s %s (generated)", ag.Name, cur.Key())

		if _, err := e.createIncome(ctx, ag, cur, ag.Amount, ag.Currency, ledger.StatusPending, description); err != nil {
			slog.Error("failed to generate agreement income",
				"agreement_id", ag.ID,
				"name", ag.Name,
				"period", cur.Key(),
				"error", err)

			if firstErr == nil {
				firstErr = fmt.Errorf("processing agreement %s: %w", ag.ID, err)
			}

			continue
		}

		processed++

		slog.Info("generated agreement income",
			"agreement_id", ag.ID,
			"name", ag.Name,
			"period", cur.Key())
	}

	return processed, firstErr
}

// createIncome performs the two-step billing effect: insert the income, then
// record the invoice entry on the agreement. The two writes are separate
// store calls; a failure between them leaves an income without an invoice
// entry, which the next Unbill/Bill cycle cannot see.
func (e *Engine) createIncome(ctx context.Context, ag *agreement.Agreement, p period.Period, amount decimal.Decimal, currency ledger.Currency, status ledger.Status, description string) (*ledger.Transaction, error) {
	now := e.now()

	tx := &ledger.Transaction{
		Type:        ledger.TypeIncome,
		EntityName:  ag.Name,
		CUIT:        ag.CUIT,
		Description: description,
		Currency:    currency,
		Amount:      amount,
		Status:      status,
		Date:        now,
		AgreementID: ag.ID,
		PeriodKey:   p.Key(),
	}

	id, err := e.ledger.Insert(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("creating invoice income: %w", err)
	}

	rec := agreement.InvoiceRecord{Sent: true, Date: now, IncomeID: id}

	if err := e.agreements.SetInvoice(ctx, ag.ID, p, rec); err != nil {
		return nil, fmt.Errorf("recording invoice entry: %w", err)
	}

	if ag.Invoices == nil {
		ag.Invoices = make(map[string]agreement.InvoiceRecord)
	}

	ag.Invoices[p.Key()] = rec

	return tx, nil
}

// convert applies the ARS-per-USD rate in the direction of the target
// currency: multiplying into ARS, dividing into USD.
func convert(amount decimal.Decimal, from, to ledger.Currency, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}

	switch {
	case from == ledger.USD && to == ledger.ARS:
		return amount.Mul(rate), nil
	case from == ledger.ARS && to == ledger.USD:
		return amount.Div(rate), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported conversion %s to %s", from, to)
	}
}
