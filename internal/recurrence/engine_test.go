package recurrence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lucasblanco/caja/internal/ledger"
	"github.com/lucasblanco/caja/internal/recurrence"
)

var now = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func parent(id string, date time.Time) *ledger.Transaction {
	return &ledger.Transaction{
		ID:          id,
		Type:        ledger.TypeExpense,
		EntityName:  "Alquiler",
		Category:    "oficina",
		Description: "Alquiler oficina",
		Currency:    ledger.ARS,
		Amount:      decimal.NewFromInt(150000),
		Status:      ledger.StatusPaid,
		Date:        date,
		IsRecurring: true,
	}
}

func child(parentID string, date time.Time) *ledger.Transaction {
	return &ledger.Transaction{
		ID:                "child-" + date.Format("2006-01"),
		Type:              ledger.TypeExpense,
		ParentRecurringID: parentID,
		Currency:          ledger.ARS,
		Amount:            decimal.NewFromInt(150000),
		Date:              date,
	}
}

func newEngine(store ledger.Store) *recurrence.Engine {
	return recurrence.New(store).WithClock(clock)
}

func TestRun_GeneratesMissingChild(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)

	var inserted *ledger.Transaction

	store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) (string, error) {
			inserted = tx
			return "new-id", nil
		})

	p := parent("p1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	n, err := newEngine(store).Run(context.Background(), []*ledger.Transaction{p})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NotNil(t, inserted)
	assert.Empty(t, inserted.ID)
	assert.Equal(t, "p1", inserted.ParentRecurringID)
	assert.False(t, inserted.IsRecurring)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), inserted.Date)
	assert.Equal(t, ledger.StatusPending, inserted.Status)
	assert.Contains(t, inserted.Description, "May 2024")
	assert.True(t, inserted.Amount.Equal(p.Amount))
}

func TestRun_SavingChildIsActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)

	var inserted *ledger.Transaction

	store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) (string, error) {
			inserted = tx
			return "new-id", nil
		})

	p := parent("p1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	p.Type = ledger.TypeSaving

	_, err := newEngine(store).Run(context.Background(), []*ledger.Transaction{p})
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, ledger.StatusActive, inserted.Status)
}

func TestRun_IdempotentOnSameSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)
	store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return("new-id", nil).
		Times(1)

	e := newEngine(store)
	snapshot := []*ledger.Transaction{parent("p1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))}

	n, err := e.Run(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Same snapshot again: the parent-eligible subset is unchanged, so no
	// second child is generated.
	n, err = e.Run(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_ExistingCurrentMonthChild(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)

	snapshot := []*ledger.Transaction{
		parent("p1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		child("p1", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
	}

	n, err := newEngine(store).Run(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_InstallmentCapRespected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)

	p := parent("p1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	p.InstallmentsTotal = 3
	p.InstallmentNumber = 1

	snapshot := []*ledger.Transaction{
		p,
		child("p1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		child("p1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	}

	// Parent plus two children exhaust a three-installment series.
	n, err := newEngine(store).Run(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_InstallmentNumberIncrements(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)

	var inserted *ledger.Transaction

	store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) (string, error) {
			inserted = tx
			return "new-id", nil
		})

	p := parent("p1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	p.InstallmentsTotal = 6
	p.InstallmentNumber = 1

	snapshot := []*ledger.Transaction{
		p,
		child("p1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	}

	_, err := newEngine(store).Run(context.Background(), snapshot)
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, 3, inserted.InstallmentNumber)
}

func TestRun_FutureOrCurrentMonthParentInert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)

	snapshot := []*ledger.Transaction{
		parent("p1", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),  // current month
		parent("p2", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)), // next month
	}

	n, err := newEngine(store).Run(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRun_ContinuesAfterParentFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)

	var insertedParents []string

	store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) (string, error) {
			if tx.ParentRecurringID == "p1" {
				return "", errors.New("write failed")
			}

			insertedParents = append(insertedParents, tx.ParentRecurringID)

			return "new-id", nil
		}).
		Times(2)

	snapshot := []*ledger.Transaction{
		parent("p1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		parent("p2", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	n, err := newEngine(store).Run(context.Background(), snapshot)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"p2"}, insertedParents)
}

func TestRun_ReentrantInvocationDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := ledger.NewMockStore(ctrl)
	e := newEngine(store)

	snapshot := []*ledger.Transaction{parent("p1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))}

	store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *ledger.Transaction) (string, error) {
			// Simulates the store subscription firing mid-write.
			n, err := e.Run(ctx, snapshot)
			assert.NoError(t, err)
			assert.Zero(t, n)

			return "new-id", nil
		})

	n, err := e.Run(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
