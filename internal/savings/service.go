// Package savings moves value between savings buckets and capitalizes period
// surpluses. Every operation writes its legs as one atomic batch; total
// savings value is conserved by construction.
package savings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/balance"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

var (
	ErrNotSaving         = errors.New("transaction is not an active saving entry")
	ErrInsufficientFunds = errors.New("transfer amount exceeds source entry")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrNoDestination     = errors.New("transfer needs a destination entry or a new bucket name")
)

type Service struct {
	store ledger.Store
	now   func() time.Time
}

func NewService(store ledger.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service's clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TransferParams describes a movement between savings entries. Exactly one
// of DestinationID or NewBucket must be set.
type TransferParams struct {
	SourceID      string
	DestinationID string
	NewBucket     string
	Amount        decimal.Decimal
}

// Transfer debits the source saving entry and credits the destination with
// the same amount, in the source's currency. Both legs carry isInitial so
// the movement never touches the cash balance, and share a transfer id.
func (s *Service) Transfer(ctx context.Context, params TransferParams) error {
	if !params.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if (params.DestinationID == "") == (params.NewBucket == "") {
		return ErrNoDestination
	}

	source, err := s.store.Get(ctx, params.SourceID)
	if err != nil {
		return fmt.Errorf("loading source entry: %w", err)
	}

	if source.Type != ledger.TypeSaving || source.Status != ledger.StatusActive {
		return ErrNotSaving
	}

	if params.Amount.GreaterThan(source.Amount) {
		return ErrInsufficientFunds
	}

	destCategory := params.NewBucket
	destEntity := params.NewBucket

	if params.DestinationID != "" {
		dest, err := s.store.Get(ctx, params.DestinationID)
		if err != nil {
			return fmt.Errorf("loading destination entry: %w", err)
		}

		if dest.Type != ledger.TypeSaving {
			return ErrNotSaving
		}

		if dest.Currency != source.Currency {
			return fmt.Errorf("%w: transfers cannot convert %s to %s", ledger.ErrUnknownCurrency, source.Currency, dest.Currency)
		}

		destCategory = dest.Category
		destEntity = dest.EntityName
	}

	now := s.now()
	transferID := uuid.NewString()

	debit := &ledger.Transaction{
		Type:        ledger.TypeSaving,
		EntityName:  source.EntityName,
		Category:    source.Category,
		Description: fmt.Sprintf("Transfer to %s", destCategory),
		Currency:    source.Currency,
		Amount:      params.Amount.Neg(),
		Status:      ledger.StatusActive,
		Date:        now,
		IsInitial:   true,
		TransferID:  transferID,
	}

	credit := &ledger.Transaction{
		Type:        ledger.TypeSaving,
		EntityName:  destEntity,
		Category:    destCategory,
		Description: fmt.Sprintf("Transfer from %s", source.Category),
		Currency:    source.Currency,
		Amount:      params.Amount,
		Status:      ledger.StatusActive,
		Date:        now,
		IsInitial:   true,
		TransferID:  transferID,
	}

	if err := s.store.InsertBatch(ctx, []*ledger.Transaction{debit, credit}); err != nil {
		return fmt.Errorf("writing transfer legs: %w", err)
	}

	return nil
}

// Capitalize moves the period's surplus into a savings entry per non-zero
// currency, dated the last day of the month. Zero in every currency is a
// no-op, not an error.
func (s *Service) Capitalize(ctx context.Context, p period.Period, amounts balance.Amounts) error {
	var legs []*ledger.Transaction

	for _, c := range ledger.Currencies {
		amount := amounts.Get(c)
		if amount.IsZero() {
			continue
		}

		if !amount.IsPositive() {
			return ErrInvalidAmount
		}

		legs = append(legs, &ledger.Transaction{
			Type:        ledger.TypeSaving,
			EntityName:  "Surplus",
			Category:    "capitalization",
			Description: fmt.Sprintf("Surplus capitalization %s", p.Key()),
			Currency:    c,
			Amount:      amount,
			Status:      ledger.StatusActive,
			Date:        p.End(),
			IsInitial:   true,
		})
	}

	if len(legs) == 0 {
		return nil
	}

	if err := s.store.InsertBatch(ctx, legs); err != nil {
		return fmt.Errorf("writing capitalization: %w", err)
	}

	return nil
}
