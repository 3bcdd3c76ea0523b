package tuition

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/escolafin/EscolaFin/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxPaymentAttempts = 3
	paymentRetryDelay  = 50 * time.Millisecond
)

// ApplyPayment records a payment against an installment and recomputes its
// status. The whole step runs in a transaction holding a row lock on the
// installment, so concurrent payments serialize and never see a stale paid
// total. Lock contention is retried up to maxPaymentAttempts before the
// failure surfaces.
func (s *Service) ApplyPayment(ctx context.Context, institutionID, installmentID uint, amountCents int64, method, note string) (*models.Installment, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	var (
		updated   *models.Installment
		studentID uint
		err       error
	)
	for attempt := 1; attempt <= maxPaymentAttempts; attempt++ {
		updated, studentID, err = s.applyPaymentOnce(institutionID, installmentID, amountCents, method, note)
		if err == nil || !isLockContention(err) {
			break
		}
		log.Warnf("tuition: payment on installment %d hit lock contention (attempt %d/%d): %v",
			installmentID, attempt, maxPaymentAttempts, err)
		time.Sleep(paymentRetryDelay * time.Duration(attempt))
	}
	if err != nil {
		return nil, err
	}

	s.invalidateSituation(ctx, institutionID, studentID)
	return updated, nil
}

func (s *Service) applyPaymentOnce(institutionID, installmentID uint, amountCents int64, method, note string) (*models.Installment, uint, error) {
	var (
		updated   *models.Installment
		studentID uint
	)
	err := s.repos.Installment.Transaction(func(tx repository.InstallmentTx) error {
		installment, err := tx.GetForUpdate(installmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstallmentNotFound
			}
			return err
		}
		if installment.InstitutionID != institutionID {
			return ErrTenantMismatch
		}
		if installment.IsTerminal() {
			return ErrInstallmentNotPayable
		}

		payments, err := tx.ListPayments(installment.ID)
		if err != nil {
			return err
		}
		var totalBefore int64
		for _, p := range payments {
			totalBefore += p.AmountCents
		}

		due := installment.AmountDueCents()
		if amountCents > due-totalBefore {
			return ErrOverpayment
		}

		payment := &models.Payment{
			InstallmentID: installment.ID,
			InstitutionID: institutionID,
			Reference:     uuid.NewString(),
			AmountCents:   amountCents,
			Method:        method,
			Note:          note,
			RecordedAt:    s.now(),
		}
		if err := tx.CreatePayment(payment); err != nil {
			return err
		}

		totalAfter := totalBefore + amountCents
		installment.Status = statusAfterPayment(due, totalAfter)
		if err := tx.Save(installment); err != nil {
			return err
		}

		installment.Payments = append(payments, *payment)
		updated = installment
		studentID = installment.StudentID
		return nil
	})
	return updated, studentID, err
}

// statusAfterPayment derives the post-payment status from the paid total.
// Callers guarantee totalPaid > 0 here.
func statusAfterPayment(dueCents, totalPaidCents int64) string {
	if totalPaidCents >= dueCents {
		return models.InstallmentStatusPaid
	}
	return models.InstallmentStatusPartial
}

// isLockContention recognizes MySQL lock wait timeouts (1205) and deadlock
// victims (1213), the two transient outcomes of serialized row access.
func isLockContention(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "deadlock found") ||
		strings.Contains(msg, "error 1205") ||
		strings.Contains(msg, "error 1213")
}
