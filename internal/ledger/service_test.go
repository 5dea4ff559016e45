package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/lucasblanco/caja/internal/ledger"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name       string
		params     ledger.CreateParams
		setupMock  func(m *ledger.MockStore)
		wantStatus ledger.Status
		wantErr    error
	}

	tests := []testCase{
		{
			name: "DefaultsPendingStatus",
			params: ledger.CreateParams{
				Type:       ledger.TypeExpense,
				EntityName: "Edesur",
				Currency:   ledger.ARS,
				Amount:     decimal.NewFromInt(25000),
				Date:       time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			},
			setupMock: func(m *ledger.MockStore) {
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return("tx-1", nil)
			},
			wantStatus: ledger.StatusPending,
		},
		{
			name: "SavingDefaultsActive",
			params: ledger.CreateParams{
				Type:     ledger.TypeSaving,
				Currency: ledger.USD,
				Amount:   decimal.NewFromInt(500),
				Date:     time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			},
			setupMock: func(m *ledger.MockStore) {
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return("tx-2", nil)
			},
			wantStatus: ledger.StatusActive,
		},
		{
			name: "UnknownCurrency",
			params: ledger.CreateParams{
				Type:     ledger.TypeIncome,
				Currency: ledger.Currency("EUR"),
				Amount:   decimal.NewFromInt(100),
			},
			wantErr: ledger.ErrUnknownCurrency,
		},
		{
			name: "UnknownType",
			params: ledger.CreateParams{
				Type:     ledger.Type("loan"),
				Currency: ledger.ARS,
			},
			wantErr: ledger.ErrUnknownType,
		},
		{
			name: "StoreError",
			params: ledger.CreateParams{
				Type:     ledger.TypeIncome,
				Currency: ledger.ARS,
				Amount:   decimal.NewFromInt(100),
			},
			setupMock: func(m *ledger.MockStore) {
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return("", errors.New("store unreachable"))
			},
			wantErr: errors.New("store unreachable"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := ledger.NewMockStore(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(store)
			}

			svc := ledger.NewService(store)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestTransaction_IsParent(t *testing.T) {
	parent := &ledger.Transaction{IsRecurring: true}
	child := &ledger.Transaction{ParentRecurringID: "p1"}
	manual := &ledger.Transaction{}

	assert.True(t, parent.IsParent())
	assert.False(t, child.IsParent())
	assert.False(t, manual.IsParent())
	assert.True(t, child.ChildOf("p1"))
	assert.False(t, child.ChildOf("p2"))
}
