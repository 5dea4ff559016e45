package savings_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lucasblanco/caja/internal/balance"
	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/ledger/memstore"
	"github.com/lucasblanco/caja/internal/period"
	"github.com/lucasblanco/caja/internal/savings"
)

var now = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func seedSaving(t *testing.T, store *memstore.Store, category string, amount int64) string {
	t.Helper()

	id, err := store.Insert(context.Background(), &ledger.Transaction{
		Type:       ledger.TypeSaving,
		EntityName: category,
		Category:   category,
		Currency:   ledger.ARS,
		Amount:     decimal.NewFromInt(amount),
		Status:     ledger.StatusActive,
		Date:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return id
}

func TestTransfer_LegsConserveValue(t *testing.T) {
	store := memstore.New()
	svc := savings.NewService(store).WithClock(clock)

	sourceID := seedSaving(t, store, "plazo fijo", 1000)
	destID := seedSaving(t, store, "dolares", 400)

	before := balance.AsOf(mustList(t, store), now)

	err := svc.Transfer(context.Background(), savings.TransferParams{
		SourceID:      sourceID,
		DestinationID: destID,
		Amount:        decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	txs := mustList(t, store)
	require.Len(t, txs, 4)

	// The two legs share a transfer id and sum to zero.
	sum := decimal.Zero
	legs := 0

	var transferID string

	for _, tx := range txs {
		if tx.TransferID == "" {
			continue
		}

		legs++
		sum = sum.Add(tx.Amount)

		assert.True(t, tx.IsInitial, "transfer legs must not touch cash")
		assert.Equal(t, ledger.ARS, tx.Currency)

		if transferID == "" {
			transferID = tx.TransferID
		} else {
			assert.Equal(t, transferID, tx.TransferID)
		}
	}

	assert.Equal(t, 2, legs)
	assert.True(t, sum.IsZero())

	after := balance.AsOf(txs, now)
	assert.True(t, before.NetWorth.Get(ledger.ARS).Equal(after.NetWorth.Get(ledger.ARS)),
		"net worth must be unchanged by a transfer")
	assert.True(t, before.Cash.Get(ledger.ARS).Equal(after.Cash.Get(ledger.ARS)))
}

func TestTransfer_NewBucket(t *testing.T) {
	store := memstore.New()
	svc := savings.NewService(store).WithClock(clock)

	sourceID := seedSaving(t, store, "plazo fijo", 1000)

	err := svc.Transfer(context.Background(), savings.TransferParams{
		SourceID:  sourceID,
		NewBucket: "vacaciones",
		Amount:    decimal.NewFromInt(250),
	})
	require.NoError(t, err)

	var credit *ledger.Transaction

	for _, tx := range mustList(t, store) {
		if tx.TransferID != "" && tx.Amount.IsPositive() {
			credit = tx
		}
	}

	require.NotNil(t, credit)
	assert.Equal(t, "vacaciones", credit.Category)
}

func TestTransfer_Validation(t *testing.T) {
	store := memstore.New()
	svc := savings.NewService(store).WithClock(clock)

	sourceID := seedSaving(t, store, "plazo fijo", 100)
	destID := seedSaving(t, store, "dolares", 50)

	tests := []struct {
		name    string
		params  savings.TransferParams
		wantErr error
	}{
		{
			name:    "ExceedsSource",
			params:  savings.TransferParams{SourceID: sourceID, DestinationID: destID, Amount: decimal.NewFromInt(500)},
			wantErr: savings.ErrInsufficientFunds,
		},
		{
			name:    "NonPositiveAmount",
			params:  savings.TransferParams{SourceID: sourceID, DestinationID: destID, Amount: decimal.Zero},
			wantErr: savings.ErrInvalidAmount,
		},
		{
			name:    "NoDestination",
			params:  savings.TransferParams{SourceID: sourceID, Amount: decimal.NewFromInt(10)},
			wantErr: savings.ErrNoDestination,
		},
		{
			name: "BothDestinations",
			params: savings.TransferParams{
				SourceID: sourceID, DestinationID: destID, NewBucket: "x", Amount: decimal.NewFromInt(10),
			},
			wantErr: savings.ErrNoDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Transfer(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Validation failures never write.
	assert.Len(t, mustList(t, store), 2)
}

func TestTransfer_CurrencyMismatch(t *testing.T) {
	store := memstore.New()
	svc := savings.NewService(store).WithClock(clock)

	sourceID := seedSaving(t, store, "plazo fijo", 100)

	destID, err := store.Insert(context.Background(), &ledger.Transaction{
		Type:     ledger.TypeSaving,
		Category: "dolares",
		Currency: ledger.USD,
		Amount:   decimal.NewFromInt(50),
		Status:   ledger.StatusActive,
		Date:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = svc.Transfer(context.Background(), savings.TransferParams{
		SourceID:      sourceID,
		DestinationID: destID,
		Amount:        decimal.NewFromInt(10),
	})
	assert.Error(t, err)
}

func TestTransfer_AtomicBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)
	svc := savings.NewService(store).WithClock(clock)

	source := &ledger.Transaction{
		ID:       "src",
		Type:     ledger.TypeSaving,
		Category: "plazo fijo",
		Currency: ledger.ARS,
		Amount:   decimal.NewFromInt(1000),
		Status:   ledger.StatusActive,
	}

	store.EXPECT().Get(gomock.Any(), "src").Return(source, nil)
	store.EXPECT().
		InsertBatch(gomock.Any(), gomock.Len(2)).
		Return(nil)

	err := svc.Transfer(context.Background(), savings.TransferParams{
		SourceID:  "src",
		NewBucket: "vacaciones",
		Amount:    decimal.NewFromInt(100),
	})
	require.NoError(t, err)
}

func TestCapitalize_WritesPerCurrencyLegs(t *testing.T) {
	store := memstore.New()
	svc := savings.NewService(store).WithClock(clock)

	p := period.Period{Year: 2024, Month: time.May}
	amounts := balance.Amounts{
		ledger.ARS: decimal.NewFromInt(300),
		ledger.USD: decimal.NewFromInt(50),
	}

	require.NoError(t, svc.Capitalize(context.Background(), p, amounts))

	txs := mustList(t, store)
	require.Len(t, txs, 2)

	for _, tx := range txs {
		assert.Equal(t, ledger.TypeSaving, tx.Type)
		assert.Equal(t, ledger.StatusActive, tx.Status)
		assert.True(t, tx.IsInitial)
		assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), tx.Date)
		assert.Contains(t, tx.Description, "2024-05")
	}
}

func TestCapitalize_ZeroIsNoOp(t *testing.T) {
	store := memstore.New()
	svc := savings.NewService(store).WithClock(clock)

	p := period.Period{Year: 2024, Month: time.May}

	require.NoError(t, svc.Capitalize(context.Background(), p, balance.Amounts{}))
	require.NoError(t, svc.Capitalize(context.Background(), p, balance.Amounts{ledger.ARS: decimal.Zero}))

	assert.Empty(t, mustList(t, store))
}

func mustList(t *testing.T, store *memstore.Store) []*ledger.Transaction {
	t.Helper()

	txs, err := store.List(context.Background())
	require.NoError(t, err)

	return txs
}
