package tuition

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/gofiber/fiber/v2/log"
)

const situationCacheTTL = 60 * time.Second

// FinancialSituation aggregates a student's installments for dashboards
// and the enrollment-eligibility check.
type FinancialSituation struct {
	StudentID         uint                 `json:"student_id"`
	TotalDueCents     int64                `json:"total_due_cents"`
	TotalPaidCents    int64                `json:"total_paid_cents"`
	TotalOverdueCents int64                `json:"total_overdue_cents"`
	Installments      []models.Installment `json:"installments"`
}

// ListByPeriod returns the institution's installments for one billing
// period. Overdue rows are resolved first so statuses and fines are
// current even when the sweep has not run yet.
func (s *Service) ListByPeriod(ctx context.Context, institutionID uint, month, year int) ([]models.Installment, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidPeriod
	}
	installments, err := s.repos.Installment.ListByPeriod(institutionID, year, month)
	if err != nil {
		return nil, err
	}
	return s.refreshOverdue(institutionID, installments)
}

// FinancialSituation aggregates the student's ledger. The result is cached
// briefly; every mutating operation invalidates the entry.
func (s *Service) FinancialSituation(ctx context.Context, institutionID, studentID uint) (*FinancialSituation, error) {
	key := situationCacheKey(institutionID, studentID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached FinancialSituation
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	installments, err := s.repos.Installment.ListByStudent(institutionID, studentID)
	if err != nil {
		return nil, err
	}
	installments, err = s.refreshOverdue(institutionID, installments)
	if err != nil {
		return nil, err
	}

	situation := &FinancialSituation{StudentID: studentID, Installments: installments}
	for _, installment := range installments {
		if installment.Status == models.InstallmentStatusCancelled {
			continue
		}
		due := installment.AmountDueCents()
		paid := installment.TotalPaidCents()
		situation.TotalDueCents += due
		situation.TotalPaidCents += paid
		if installment.Status == models.InstallmentStatusLate {
			situation.TotalOverdueCents += due - paid
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(situation); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), situationCacheTTL); err != nil {
				log.Warnf("tuition: caching situation for student %d failed: %v", studentID, err)
			}
		}
	}
	return situation, nil
}

// CanEnroll is the eligibility answer consumed by the enrollment module:
// a student with overdue debt may not enroll when the institution blocks
// on overdue balances.
func (s *Service) CanEnroll(ctx context.Context, institutionID, studentID uint) (bool, error) {
	inst, err := s.repos.Institution.GetByID(institutionID)
	if err != nil {
		return false, err
	}
	if !inst.BlockOnOverdue {
		return true, nil
	}
	situation, err := s.FinancialSituation(ctx, institutionID, studentID)
	if err != nil {
		return false, err
	}
	return situation.TotalOverdueCents == 0, nil
}

// refreshOverdue applies the idempotent overdue transition to any listed
// installment whose due date passed since its last write, then reloads the
// rows that changed.
func (s *Service) refreshOverdue(institutionID uint, installments []models.Installment) ([]models.Installment, error) {
	now := s.now()
	var inst *models.Institution

	for i := range installments {
		installment := &installments[i]
		if installment.IsTerminal() || !installment.Overdue(now) {
			continue
		}
		if installment.Status == models.InstallmentStatusLate && installment.FineAppliedAt != nil {
			continue
		}
		if inst == nil {
			var err error
			inst, err = s.repos.Institution.GetByID(institutionID)
			if err != nil {
				return nil, err
			}
		}
		changed, err := s.ResolveOverdue(inst, installment.ID)
		if err != nil {
			return nil, err
		}
		if changed {
			fresh, err := s.repos.Installment.GetByID(institutionID, installment.ID)
			if err != nil {
				return nil, err
			}
			installments[i] = *fresh
		}
	}
	return installments, nil
}

func situationCacheKey(institutionID, studentID uint) string {
	return fmt.Sprintf("tuition:situation:%d:%d", institutionID, studentID)
}

func (s *Service) invalidateSituation(ctx context.Context, institutionID, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, situationCacheKey(institutionID, studentID)); err != nil {
		log.Warnf("tuition: cache invalidation for student %d failed: %v", studentID, err)
	}
}

func (s *Service) invalidateSituations(ctx context.Context, institutionID uint, students []models.Student) {
	if s.cache == nil {
		return
	}
	for _, student := range students {
		s.invalidateSituation(ctx, institutionID, student.ID)
	}
}
