package tuition

import (
	"errors"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/escolafin/EscolaFin/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// DeriveStatus computes the status an installment should carry given its
// paid total at the given instant. Pure; persistence happens in
// ResolveOverdue and the payment ledger, the only two status writers.
func DeriveStatus(installment *models.Installment, totalPaidCents int64, now time.Time) string {
	if installment.IsTerminal() {
		return installment.Status
	}
	due := installment.AmountDueCents()
	if totalPaidCents >= due && totalPaidCents > 0 {
		return models.InstallmentStatusPaid
	}
	if installment.Overdue(now) && totalPaidCents < due {
		return models.InstallmentStatusLate
	}
	if totalPaidCents > 0 {
		return models.InstallmentStatusPartial
	}
	return models.InstallmentStatusPending
}

// ResolveOverdue transitions one overdue installment: applies the
// institution's fine policy at most once per due date and marks the row
// Late (or Partial when the fine raised the amount past an already-covered
// total). Returns whether the row changed. Safe to call repeatedly; it is
// the single code path used by both the sweep and lazy reads.
func (s *Service) ResolveOverdue(inst *models.Institution, installmentID uint) (bool, error) {
	now := s.now()
	changed := false
	err := s.repos.Installment.Transaction(func(tx repository.InstallmentTx) error {
		installment, err := tx.GetForUpdate(installmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInstallmentNotFound
			}
			return err
		}
		if installment.InstitutionID != inst.ID {
			return ErrTenantMismatch
		}
		if installment.IsTerminal() || !installment.Overdue(now) {
			return nil
		}

		payments, err := tx.ListPayments(installment.ID)
		if err != nil {
			return err
		}
		var totalPaid int64
		for _, p := range payments {
			totalPaid += p.AmountCents
		}

		dueBefore := installment.AmountDueCents()
		if totalPaid >= dueBefore {
			// Fully covered but never flipped; fines are only computed
			// while unpaid, so just settle the status.
			if totalPaid > 0 && installment.Status != models.InstallmentStatusPaid {
				installment.Status = models.InstallmentStatusPaid
				changed = true
				return tx.Save(installment)
			}
			return nil
		}

		if installment.FineAppliedAt == nil && inst.FinePolicyKind != models.FinePolicyNone {
			fine := inst.FineCentsFor(installment.BaseCents)
			if fine > 0 {
				installment.FineCents += fine
				installment.FineAppliedAt = &now
				changed = true
			}
		}

		// A total that covers the pre-fine obligation but not the fine
		// itself is partial coverage, not a late default.
		status := models.InstallmentStatusLate
		if totalPaid > 0 && totalPaid >= installment.AmountDueCents()-installment.FineCents {
			status = models.InstallmentStatusPartial
		}
		if installment.Status != status {
			installment.Status = status
			changed = true
		}
		if !changed {
			return nil
		}
		return tx.Save(installment)
	})
	return changed, err
}

// SweepResult summarizes one overdue sweep over an institution.
type SweepResult struct {
	Examined int `json:"examined"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

// RunSweep walks every overdue non-terminal installment of the institution
// and resolves it. Row failures are logged and counted, never fatal.
func (s *Service) RunSweep(institutionID uint) (*SweepResult, error) {
	inst, err := s.repos.Institution.GetByID(institutionID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.repos.Installment.ListOverdue(institutionID, s.now())
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Examined: len(overdue)}
	for _, installment := range overdue {
		changed, err := s.ResolveOverdue(inst, installment.ID)
		if err != nil {
			result.Failed++
			log.Errorf("tuition: sweep failed on installment %d: %v", installment.ID, err)
			continue
		}
		if changed {
			result.Updated++
		}
	}
	return result, nil
}
