package tuition

import (
	"errors"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// ResolveAmount reads the per-period tuition amount from the student's
// academic placement: the class for secondary institutions, the course for
// higher education. A configured amount of zero is valid (free plan) but
// logged, since it usually means the plan was never priced.
func (s *Service) ResolveAmount(inst *models.Institution, student *models.Student) (int64, error) {
	switch inst.AcademicType {
	case models.AcademicTypeSecondary:
		if student.ClassID == nil {
			return 0, ErrPlanNotConfigured
		}
		class, err := s.repos.Student.GetClass(inst.ID, *student.ClassID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrPlanNotConfigured
			}
			return 0, err
		}
		if class.MonthlyFeeCents == 0 {
			log.Warnf("tuition: class %d of institution %d has a zero monthly fee", class.ID, inst.ID)
		}
		return class.MonthlyFeeCents, nil

	case models.AcademicTypeHigher:
		if student.CourseID == nil {
			return 0, ErrPlanNotConfigured
		}
		course, err := s.repos.Student.GetCourse(inst.ID, *student.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrPlanNotConfigured
			}
			return 0, err
		}
		if course.MonthlyFeeCents == 0 {
			log.Warnf("tuition: course %d of institution %d has a zero monthly fee", course.ID, inst.ID)
		}
		return course.MonthlyFeeCents, nil
	}

	return 0, ErrPlanNotConfigured
}
