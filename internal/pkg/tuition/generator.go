package tuition

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Number of students processed in parallel during a generation run.
const generatorWorkers = 8

// GenerationError records a single student's failure without aborting the
// rest of the batch.
type GenerationError struct {
	StudentID uint   `json:"student_id"`
	Message   string `json:"message"`
}

// GenerationResult summarizes one generation run.
type GenerationResult struct {
	Created int               `json:"created"`
	Skipped int               `json:"skipped"`
	Errors  []GenerationError `json:"errors,omitempty"`
}

// Generate creates one pending installment per actively enrolled student
// for the given period. Students that already have a non-cancelled
// installment for the period are skipped, so re-running a period is safe.
// Per-student failures are collected, never fatal for the batch.
func (s *Service) Generate(ctx context.Context, institutionID uint, month, year int, dueDate time.Time) (*GenerationResult, error) {
	if month < 1 || month > 12 || year < 2000 {
		return nil, ErrInvalidPeriod
	}

	inst, err := s.repos.Institution.GetByID(institutionID)
	if err != nil {
		return nil, err
	}
	students, err := s.repos.Student.ListActive(institutionID)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{}
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, generatorWorkers)
	)

	for _, student := range students {
		wg.Add(1)
		sem <- struct{}{}
		go func(student models.Student) {
			defer wg.Done()
			defer func() { <-sem }()

			created, genErr := s.generateOne(inst, &student, month, year, dueDate)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case genErr != nil:
				result.Errors = append(result.Errors, GenerationError{StudentID: student.ID, Message: genErr.Error()})
			case created:
				result.Created++
			default:
				result.Skipped++
			}
		}(student)
	}
	wg.Wait()

	log.Infof("tuition: generated %d/%d installments for institution %d period %02d/%d (%d errors)",
		result.Created, len(students), institutionID, month, year, len(result.Errors))

	s.invalidateSituations(ctx, institutionID, students)

	return result, nil
}

// generateOne creates the installment for a single student, reporting
// whether a row was created or the period already existed.
func (s *Service) generateOne(inst *models.Institution, student *models.Student, month, year int, dueDate time.Time) (bool, error) {
	exists, err := s.repos.Installment.ExistsForPeriod(inst.ID, student.ID, year, month)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	amount, err := s.ResolveAmount(inst, student)
	if err != nil {
		return false, err
	}

	installment := &models.Installment{
		InstitutionID: inst.ID,
		StudentID:     student.ID,
		PeriodYear:    year,
		PeriodMonth:   month,
		BaseCents:     amount,
		DueDate:       dueDate,
		Status:        models.InstallmentStatusPending,
		Active:        activeFlag(),
	}
	if enrollment, err := s.repos.Enrollment.GetActiveByStudent(inst.ID, student.ID); err == nil {
		installment.EnrollmentID = &enrollment.ID
	}

	if err := s.repos.Installment.Create(installment); err != nil {
		// A concurrent run of the same period inserted first. The unique
		// key makes that a skip, not a failure.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func activeFlag() *bool {
	active := true
	return &active
}
