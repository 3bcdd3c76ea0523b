package tuition

import (
	"context"
	"errors"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/escolafin/EscolaFin/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Cancel moves an unpaid installment to its terminal cancelled state. The
// row is kept for history; only the status changes and the period becomes
// free for regeneration. Installments with any recorded payment are
// protected, refunds are out of scope.
func (s *Service) Cancel(ctx context.Context, institutionID, installmentID uint) (*models.Installment, error) {
	var (
		cancelled *models.Installment
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
		if installment.Status == models.InstallmentStatusCancelled {
			cancelled = installment
			return nil
		}

		payments, err := tx.ListPayments(installment.ID)
		if err != nil {
			return err
		}
		if len(payments) > 0 || installment.Status == models.InstallmentStatusPaid {
			return ErrCannotCancelPaid
		}

		installment.Status = models.InstallmentStatusCancelled
		installment.Active = nil
		if err := tx.Save(installment); err != nil {
			return err
		}
		cancelled = installment
		studentID = installment.StudentID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if studentID != 0 {
		s.invalidateSituation(ctx, institutionID, studentID)
	}
	return cancelled, nil
}

// CancelEnrollment cancels an enrollment and cascades into its unpaid
// installments. Installments with recorded payments survive the cascade,
// the obligation already exists.
func (s *Service) CancelEnrollment(ctx context.Context, institutionID, enrollmentID uint) (int, error) {
	enrollment, err := s.repos.Enrollment.GetByID(institutionID, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrInstallmentNotFound
		}
		return 0, err
	}

	if enrollment.Status != models.EnrollmentStatusCancelled {
		now := s.now()
		enrollment.Status = models.EnrollmentStatusCancelled
		enrollment.CancelledAt = &now
		if err := s.repos.Enrollment.Save(enrollment); err != nil {
			return 0, err
		}
	}

	installments, err := s.repos.Installment.ListByEnrollment(institutionID, enrollmentID)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, installment := range installments {
		if installment.IsTerminal() {
			continue
		}
		if _, err := s.Cancel(ctx, institutionID, installment.ID); err != nil {
			if errors.Is(err, ErrCannotCancelPaid) {
				continue
			}
			log.Errorf("tuition: enrollment %d cascade failed on installment %d: %v", enrollmentID, installment.ID, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}
