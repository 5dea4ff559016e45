package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrUnknownType     = errors.New("unknown transaction type")
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=ledger
type Store interface {
	Insert(ctx context.Context, tx *Transaction) (string, error)
	Get(ctx context.Context, id string) (*Transaction, error)
	Update(ctx context.Context, tx *Transaction) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Transaction, error)

	// InsertBatch writes all transactions as a unit: either every insert is
	// applied or none is.
	InsertBatch(ctx context.Context, txs []*Transaction) error

	// Watch delivers the full current transaction set on every change,
	// starting with an initial snapshot. The channel is closed when ctx is
	// cancelled.
	Watch(ctx context.Context) (<-chan []*Transaction, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateParams struct {
	Type              Type
	EntityName        string
	Category          string
	Description       string
	CUIT              string
	Currency          Currency
	Amount            decimal.Decimal
	Status            Status
	Date              time.Time
	AccountID         string
	IsRecurring       bool
	InstallmentsTotal int
	CreatedBy         string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	switch params.Type {
	case TypeIncome, TypeExpense, TypeSaving:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, params.Type)
	}

	switch params.Currency {
	case ARS, USD:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurrency, params.Currency)
	}

	tx := &Transaction{
		Type:              params.Type,
		EntityName:        params.EntityName,
		Category:          params.Category,
		Description:       params.Description,
		CUIT:              params.CUIT,
		Currency:          params.Currency,
		Amount:            params.Amount,
		Status:            params.Status,
		Date:              params.Date,
		AccountID:         params.AccountID,
		IsRecurring:       params.IsRecurring,
		InstallmentsTotal: params.InstallmentsTotal,
		CreatedBy:         params.CreatedBy,
	}

	if tx.Status == "" {
		if tx.Type == TypeSaving {
			tx.Status = StatusActive
		} else {
			tx.Status = StatusPending
		}
	}

	id, err := s.store.Insert(ctx, tx)
	if err != nil {
		return nil, err
	}

	tx.ID = id

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Transaction, error) {
	return s.store.List(ctx)
}

func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	return s.store.Update(ctx, tx)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	return s.store.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
