package tuition

import (
	"sync"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/escolafin/EscolaFin/app/repository"
	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the gorm repositories. Its single
// mutex plays the role of the per-row transactional lock: Transaction holds
// it for the whole callback, so concurrent payments serialize exactly like
// they do against MySQL.
type fakeStore struct {
	mu sync.Mutex

	institutions map[uint]*models.Institution
	classes      map[uint]*models.Class
	courses      map[uint]*models.Course
	students     map[uint]*models.Student
	enrollments  map[uint]*models.Enrollment
	installments map[uint]*models.Installment
	payments     map[uint][]models.Payment

	nextInstallmentID uint
	nextPaymentID     uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		institutions: make(map[uint]*models.Institution),
		classes:      make(map[uint]*models.Class),
		courses:      make(map[uint]*models.Course),
		students:     make(map[uint]*models.Student),
		enrollments:  make(map[uint]*models.Enrollment),
		installments: make(map[uint]*models.Installment),
		payments:     make(map[uint][]models.Payment),
	}
}

func (s *fakeStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		Institution: &fakeInstitutionRepo{s},
		Student:     &fakeStudentRepo{s},
		Enrollment:  &fakeEnrollmentRepo{s},
		Installment: &fakeInstallmentRepo{s},
		Payment:     &fakePaymentRepo{s},
	}
}

func copyInstallment(i *models.Installment, payments []models.Payment) models.Installment {
	out := *i
	out.Payments = append([]models.Payment(nil), payments...)
	return out
}

type fakeInstitutionRepo struct{ s *fakeStore }

func (r *fakeInstitutionRepo) GetByID(id uint) (*models.Institution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inst, ok := r.s.institutions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *inst
	return &out, nil
}

func (r *fakeInstitutionRepo) List() ([]models.Institution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Institution
	for _, inst := range r.s.institutions {
		out = append(out, *inst)
	}
	return out, nil
}

func (r *fakeInstitutionRepo) Save(inst *models.Institution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *inst
	r.s.institutions[inst.ID] = &copied
	return nil
}

type fakeStudentRepo struct{ s *fakeStore }

func (r *fakeStudentRepo) GetByID(institutionID, id uint) (*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student, ok := r.s.students[id]
	if !ok || student.InstitutionID != institutionID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *student
	return &out, nil
}

func (r *fakeStudentRepo) ListActive(institutionID uint) ([]models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Student
	for _, enrollment := range r.s.enrollments {
		if enrollment.InstitutionID != institutionID || enrollment.Status != models.EnrollmentStatusActive {
			continue
		}
		if student, ok := r.s.students[enrollment.StudentID]; ok {
			out = append(out, *student)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) GetClass(institutionID, classID uint) (*models.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	class, ok := r.s.classes[classID]
	if !ok || class.InstitutionID != institutionID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *class
	return &out, nil
}

func (r *fakeStudentRepo) GetCourse(institutionID, courseID uint) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	course, ok := r.s.courses[courseID]
	if !ok || course.InstitutionID != institutionID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *course
	return &out, nil
}

func (r *fakeStudentRepo) Create(student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *student
	r.s.students[student.ID] = &copied
	return nil
}

type fakeEnrollmentRepo struct{ s *fakeStore }

func (r *fakeEnrollmentRepo) GetByID(institutionID, id uint) (*models.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	enrollment, ok := r.s.enrollments[id]
	if !ok || enrollment.InstitutionID != institutionID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *enrollment
	return &out, nil
}

func (r *fakeEnrollmentRepo) GetActiveByStudent(institutionID, studentID uint) (*models.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, enrollment := range r.s.enrollments {
		if enrollment.InstitutionID == institutionID && enrollment.StudentID == studentID &&
			enrollment.Status == models.EnrollmentStatusActive {
			out := *enrollment
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEnrollmentRepo) Save(enrollment *models.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *enrollment
	r.s.enrollments[enrollment.ID] = &copied
	return nil
}

func (r *fakeEnrollmentRepo) Create(enrollment *models.Enrollment) error {
	return r.Save(enrollment)
}

type fakeInstallmentRepo struct{ s *fakeStore }

func (r *fakeInstallmentRepo) Create(inst *models.Installment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.installments {
		if existing.Active != nil && inst.Active != nil &&
			existing.InstitutionID == inst.InstitutionID &&
			existing.StudentID == inst.StudentID &&
			existing.PeriodYear == inst.PeriodYear &&
			existing.PeriodMonth == inst.PeriodMonth {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.nextInstallmentID++
	inst.ID = r.s.nextInstallmentID
	inst.CreatedAt = time.Now()
	copied := *inst
	r.s.installments[inst.ID] = &copied
	return nil
}

func (r *fakeInstallmentRepo) GetByID(institutionID, id uint) (*models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inst, ok := r.s.installments[id]
	if !ok || inst.InstitutionID != institutionID {
		return nil, gorm.ErrRecordNotFound
	}
	out := copyInstallment(inst, r.s.payments[id])
	return &out, nil
}

func (r *fakeInstallmentRepo) Save(inst *models.Installment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *inst
	copied.Payments = nil
	r.s.installments[inst.ID] = &copied
	return nil
}

func (r *fakeInstallmentRepo) ExistsForPeriod(institutionID, studentID uint, year, month int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inst := range r.s.installments {
		if inst.InstitutionID == institutionID && inst.StudentID == studentID &&
			inst.PeriodYear == year && inst.PeriodMonth == month &&
			inst.Status != models.InstallmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInstallmentRepo) ListByPeriod(institutionID uint, year, month int) ([]models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Installment
	for id, inst := range r.s.installments {
		if inst.InstitutionID == institutionID && inst.PeriodYear == year && inst.PeriodMonth == month {
			out = append(out, copyInstallment(inst, r.s.payments[id]))
		}
	}
	return out, nil
}

func (r *fakeInstallmentRepo) ListByStudent(institutionID, studentID uint) ([]models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Installment
	for id, inst := range r.s.installments {
		if inst.InstitutionID == institutionID && inst.StudentID == studentID {
			out = append(out, copyInstallment(inst, r.s.payments[id]))
		}
	}
	return out, nil
}

func (r *fakeInstallmentRepo) ListByEnrollment(institutionID, enrollmentID uint) ([]models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Installment
	for id, inst := range r.s.installments {
		if inst.InstitutionID == institutionID && inst.EnrollmentID != nil && *inst.EnrollmentID == enrollmentID {
			out = append(out, copyInstallment(inst, r.s.payments[id]))
		}
	}
	return out, nil
}

func (r *fakeInstallmentRepo) ListOverdue(institutionID uint, now time.Time) ([]models.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Installment
	for id, inst := range r.s.installments {
		if inst.InstitutionID != institutionID || !inst.DueDate.Before(now) {
			continue
		}
		if inst.Status == models.InstallmentStatusPending || inst.Status == models.InstallmentStatusPartial {
			out = append(out, copyInstallment(inst, r.s.payments[id]))
		}
	}
	return out, nil
}

func (r *fakeInstallmentRepo) Transaction(fn func(tx repository.InstallmentTx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(&fakeInstallmentTx{s: r.s})
}

// fakeInstallmentTx operates under the store mutex held by Transaction.
type fakeInstallmentTx struct{ s *fakeStore }

func (t *fakeInstallmentTx) GetForUpdate(id uint) (*models.Installment, error) {
	inst, ok := t.s.installments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *inst
	return &out, nil
}

func (t *fakeInstallmentTx) ListPayments(installmentID uint) ([]models.Payment, error) {
	return append([]models.Payment(nil), t.s.payments[installmentID]...), nil
}

func (t *fakeInstallmentTx) CreatePayment(p *models.Payment) error {
	t.s.nextPaymentID++
	p.ID = t.s.nextPaymentID
	t.s.payments[p.InstallmentID] = append(t.s.payments[p.InstallmentID], *p)
	return nil
}

func (t *fakeInstallmentTx) Save(inst *models.Installment) error {
	copied := *inst
	copied.Payments = nil
	t.s.installments[inst.ID] = &copied
	return nil
}

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) ListByInstallment(institutionID, installmentID uint) ([]models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Payment
	for _, p := range r.s.payments[installmentID] {
		if p.InstitutionID == institutionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) GetByReference(institutionID uint, reference string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, payments := range r.s.payments {
		for _, p := range payments {
			if p.InstitutionID == institutionID && p.Reference == reference {
				out := p
				return &out, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// Test fixtures shared by the suite.

// newTestService pins the clock before any fixture due date so lazy
// overdue resolution stays inert unless a test moves time forward.
func newTestService(store *fakeStore) *Service {
	svc := NewService(store.repositories(), nil)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

// seedSecondary creates an institution with one enrolled student attached
// to a priced class, returning (institution, student, enrollment) ids.
func seedSecondary(store *fakeStore, feeCents int64) (uint, uint, uint) {
	store.institutions[1] = &models.Institution{
		ID:             1,
		Name:           "Colegio Horizonte",
		AcademicType:   models.AcademicTypeSecondary,
		BlockOnOverdue: true,
	}
	store.classes[10] = &models.Class{ID: 10, InstitutionID: 1, Name: "10A", MonthlyFeeCents: feeCents}
	classID := uint(10)
	store.students[100] = &models.Student{ID: 100, InstitutionID: 1, Name: "Ana", ClassID: &classID}
	store.enrollments[1000] = &models.Enrollment{
		ID:            1000,
		InstitutionID: 1,
		StudentID:     100,
		Status:        models.EnrollmentStatusActive,
		EnrolledAt:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	return 1, 100, 1000
}
