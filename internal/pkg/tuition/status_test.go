package tuition

import (
	"context"
	"testing"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	before := now.AddDate(0, 0, 5)
	after := now.AddDate(0, 0, -5)

	tests := []struct {
		name   string
		status string
		due    time.Time
		base   int64
		fine   int64
		paid   int64
		want   string
	}{
		{name: "unpaid before due date", status: models.InstallmentStatusPending, due: before, base: 75000, want: models.InstallmentStatusPending},
		{name: "partially paid before due date", status: models.InstallmentStatusPending, due: before, base: 75000, paid: 100, want: models.InstallmentStatusPartial},
		{name: "fully paid", status: models.InstallmentStatusPartial, due: before, base: 75000, paid: 75000, want: models.InstallmentStatusPaid},
		{name: "unpaid past due date", status: models.InstallmentStatusPending, due: after, base: 75000, want: models.InstallmentStatusLate},
		{name: "partially paid past due date", status: models.InstallmentStatusPartial, due: after, base: 75000, paid: 100, want: models.InstallmentStatusLate},
		{name: "fine outstanding past due date", status: models.InstallmentStatusLate, due: after, base: 120000, fine: 5000, paid: 120000, want: models.InstallmentStatusLate},
		{name: "fine covered past due date", status: models.InstallmentStatusLate, due: after, base: 120000, fine: 5000, paid: 125000, want: models.InstallmentStatusPaid},
		{name: "paid is terminal", status: models.InstallmentStatusPaid, due: after, base: 75000, paid: 75000, want: models.InstallmentStatusPaid},
		{name: "cancelled is terminal", status: models.InstallmentStatusCancelled, due: after, base: 75000, want: models.InstallmentStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			installment := &models.Installment{
				Status:    tt.status,
				BaseCents: tt.base,
				FineCents: tt.fine,
				DueDate:   tt.due,
			}
			assert.Equal(t, tt.want, DeriveStatus(installment, tt.paid, now))
		})
	}
}

func TestSweepAppliesFlatFineOnce(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	instID, installmentID := generateSingle(t, store, svc, 120000)
	store.institutions[instID].FinePolicyKind = models.FinePolicyFlat
	store.institutions[instID].FineFlatCents = 5000

	// 1st of April: the March installment is five days overdue.
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }

	result, err := svc.RunSweep(instID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Examined)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Failed)

	got, err := store.repositories().Installment.GetByID(instID, installmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusLate, got.Status)
	assert.Equal(t, int64(5000), got.FineCents)
	assert.Equal(t, int64(125000), got.AmountDueCents())
	require.NotNil(t, got.FineAppliedAt)

	// Re-running must not stack a second fine.
	again, err := svc.RunSweep(instID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Updated)

	got, err = store.repositories().Installment.GetByID(instID, installmentID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.FineCents)
}

func TestSweepAppliesPercentFine(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	instID, installmentID := generateSingle(t, store, svc, 120000)
	store.institutions[instID].FinePolicyKind = models.FinePolicyPercent
	store.institutions[instID].FinePercentBps = 250 // 2.5%

	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }
	_, err := svc.RunSweep(instID)
	require.NoError(t, err)

	got, err := store.repositories().Installment.GetByID(instID, installmentID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.FineCents)
	assert.Equal(t, int64(123000), got.AmountDueCents())
	assert.Equal(t, models.InstallmentStatusLate, got.Status)
}

func TestSweepWithoutFinePolicyStillMarksLate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	instID, installmentID := generateSingle(t, store, svc, 75000)

	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }
	_, err := svc.RunSweep(instID)
	require.NoError(t, err)

	got, err := store.repositories().Installment.GetByID(instID, installmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusLate, got.Status)
	assert.Equal(t, int64(0), got.FineCents)
	assert.Nil(t, got.FineAppliedAt)
}

func TestSweepSkipsPaidAndCancelled(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	instID, installmentID := generateSingle(t, store, svc, 75000)
	ctx := context.Background()

	_, err := svc.ApplyPayment(ctx, instID, installmentID, 75000, models.PaymentMethodCash, "")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }
	result, err := svc.RunSweep(instID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Examined, "terminal installments never enter the sweep")

	got, err := store.repositories().Installment.GetByID(instID, installmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, got.Status)
	assert.Equal(t, int64(0), got.FineCents)
}

func TestResolveOverdueSettlesCoveredInstallment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	instID, installmentID := generateSingle(t, store, svc, 120000)
	ctx := context.Background()

	// Covered in full before the due date but the row was left Partial by
	// an interrupted writer; the resolver settles it without a fine.
	_, err := svc.ApplyPayment(ctx, instID, installmentID, 120000, models.PaymentMethodCash, "")
	require.NoError(t, err)
	store.installments[installmentID].Status = models.InstallmentStatusPartial

	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }
	inst, err := store.repositories().Institution.GetByID(instID)
	require.NoError(t, err)
	changed, err := svc.ResolveOverdue(inst, installmentID)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := store.repositories().Installment.GetByID(instID, installmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, got.Status)
	assert.Equal(t, int64(0), got.FineCents)
}

func TestResolveOverdueFineShortfallIsPartial(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	instID, installmentID := generateSingle(t, store, svc, 120000)
	store.institutions[instID].FinePolicyKind = models.FinePolicyFlat
	store.institutions[instID].FineFlatCents = 5000
	ctx := context.Background()

	// Fine lands first, then the base amount gets covered in full. Only
	// the fine is outstanding afterwards; that is partial coverage, not a
	// default, and no second fine may stack.
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }
	_, err := svc.RunSweep(instID)
	require.NoError(t, err)

	updated, err := svc.ApplyPayment(ctx, instID, installmentID, 120000, models.PaymentMethodCash, "")
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPartial, updated.Status)

	inst, err := store.repositories().Institution.GetByID(instID)
	require.NoError(t, err)
	changed, err := svc.ResolveOverdue(inst, installmentID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := store.repositories().Installment.GetByID(instID, installmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPartial, got.Status)
	assert.Equal(t, int64(5000), got.FineCents)
	assert.Equal(t, int64(5000), got.AmountDueCents()-got.TotalPaidCents())
}

func TestResolveOverdueTenantMismatch(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	_, installmentID := generateSingle(t, store, svc, 75000)
	other := &models.Institution{ID: 99, Name: "Other", AcademicType: models.AcademicTypeSecondary}

	svc.now = func() time.Time { return time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC) }
	_, err := svc.ResolveOverdue(other, installmentID)
	assert.ErrorIs(t, err, ErrTenantMismatch)
}
