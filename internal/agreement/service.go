package agreement

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

var (
	ErrNotFound         = errors.New("agreement not found")
	ErrUnknownFrequency = errors.New("unknown frequency")
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=agreement
type Store interface {
	Insert(ctx context.Context, ag *Agreement) (string, error)
	Get(ctx context.Context, id string) (*Agreement, error)
	Update(ctx context.Context, ag *Agreement) error
	List(ctx context.Context) ([]*Agreement, error)

	// SetInvoice records rec under the period's key; ClearInvoice removes the
	// entry. Both touch only the invoices map, not the rest of the document.
	SetInvoice(ctx context.Context, id string, p period.Period, rec InvoiceRecord) error
	ClearInvoice(ctx context.Context, id string, p period.Period) error

	// Watch delivers the full current agreement set on every change, starting
	// with an initial snapshot.
	Watch(ctx context.Context) (<-chan []*Agreement, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateParams struct {
	Name        string
	CUIT        string
	Description string
	Frequency   Frequency
	Currency    ledger.Currency
	Amount      decimal.Decimal
	HasInvoice  bool
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Agreement, error) {
	switch params.Frequency {
	case FrequencyMonthly, FrequencyOneTime:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, params.Frequency)
	}

	switch params.Currency {
	case ledger.ARS, ledger.USD:
	default:
		return nil, fmt.Errorf("%w: %q", ledger.ErrUnknownCurrency, params.Currency)
	}

	ag := &Agreement{
		Name:        params.Name,
		CUIT:        params.CUIT,
		Description: params.Description,
		Frequency:   params.Frequency,
		Currency:    params.Currency,
		Amount:      params.Amount,
		HasInvoice:  params.HasInvoice,
		IsActive:    true,
	}

	id, err := s.store.Insert(ctx, ag)
	if err != nil {
		return nil, err
	}

	ag.ID = id

	return ag, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Agreement, error) {
	return s.store.Get(ctx, id)
}

// List returns active agreements only; deactivated ones are excluded from
// all listings and processing.
func (s *Service) List(ctx context.Context) ([]*Agreement, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*Agreement, 0, len(all))

	for _, ag := range all {
		if ag.IsActive {
			active = append(active, ag)
		}
	}

	return active, nil
}

func (s *Service) Update(ctx context.Context, ag *Agreement) error {
	return s.store.Update(ctx, ag)
}

// Deactivate soft-deletes the agreement.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	ag, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	ag.IsActive = false

	return s.store.Update(ctx, ag)
}
