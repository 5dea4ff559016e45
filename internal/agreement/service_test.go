package agreement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/period"
)

func TestService_Create(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{
			name: "monthly agreement starts active",
			params: CreateParams{
				Name:      "Hosting SRL",
				Frequency: FrequencyMonthly,
				Currency:  ledger.USD,
				Amount:    decimal.NewFromInt(500),
			},
		},
		{
			name: "one time agreement",
			params: CreateParams{
				Name:      "Setup fee",
				Frequency: FrequencyOneTime,
				Currency:  ledger.ARS,
				Amount:    decimal.NewFromInt(120000),
			},
		},
		{
			name: "unknown frequency rejected",
			params: CreateParams{
				Name:      "Bad",
				Frequency: Frequency("weekly"),
				Currency:  ledger.ARS,
				Amount:    decimal.NewFromInt(1),
			},
			wantErr: ErrUnknownFrequency,
		},
		{
			name: "unknown currency rejected",
			params: CreateParams{
				Name:      "Bad",
				Frequency: FrequencyMonthly,
				Currency:  ledger.Currency("EUR"),
				Amount:    decimal.NewFromInt(1),
			},
			wantErr: ledger.ErrUnknownCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := NewMockStore(ctrl)

			if tt.wantErr == nil {
				store.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, ag *Agreement) (string, error) {
						assert.True(t, ag.IsActive)
						return "ag-1", nil
					})
			}

			got, err := NewService(store).Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ag-1", got.ID)
			assert.Equal(t, tt.params.Name, got.Name)
		})
	}
}

func TestService_ListExcludesDeactivated(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	store.EXPECT().List(gomock.Any()).Return([]*Agreement{
		{ID: "a", Name: "Active", IsActive: true},
		{ID: "b", Name: "Gone", IsActive: false},
		{ID: "c", Name: "Also active", IsActive: true},
	}, nil)

	got, err := NewService(store).List(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestService_Deactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	ag := &Agreement{ID: "ag-1", Name: "Hosting SRL", IsActive: true}

	store.EXPECT().Get(gomock.Any(), "ag-1").Return(ag, nil)
	store.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, updated *Agreement) error {
			assert.False(t, updated.IsActive)
			return nil
		})

	require.NoError(t, NewService(store).Deactivate(context.Background(), "ag-1"))
}

func TestAgreement_Billed(t *testing.T) {
	jan := period.Period{Year: 2026, Month: time.January}
	feb := period.Period{Year: 2026, Month: time.February}

	ag := &Agreement{
		Invoices: map[string]InvoiceRecord{
			jan.Key(): {Sent: true, Date: jan.Start(), IncomeID: "tx-1"},
			feb.Key(): {Sent: false},
		},
	}

	assert.True(t, ag.Billed(jan))
	assert.False(t, ag.Billed(feb), "record without sent flag is not billed")
	assert.False(t, ag.Billed(period.Period{Year: 2026, Month: time.March}))

	rec, ok := ag.Invoice(jan)
	require.True(t, ok)
	assert.Equal(t, "tx-1", rec.IncomeID)
}

func TestAgreement_BilledPeriodsSorted(t *testing.T) {
	ag := &Agreement{
		Invoices: map[string]InvoiceRecord{
			"2026-03": {Sent: true},
			"2025-11": {Sent: true},
			"2026-01": {Sent: true},
			"bogus":   {Sent: true},
		},
	}

	got := ag.BilledPeriods()

	require.Len(t, got, 3)
	assert.Equal(t, "2025-11", got[0].Key())
	assert.Equal(t, "2026-01", got[1].Key())
	assert.Equal(t, "2026-03", got[2].Key())
}
