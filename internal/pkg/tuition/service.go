package tuition

import (
	"context"
	"time"

	"github.com/escolafin/EscolaFin/app/repository"
	"gorm.io/gorm"
)

// Cache is the optional read-side cache used for financial situations.
// Implementations must be safe for concurrent use; a nil Cache disables
// caching entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Service is the tuition billing engine: installment generation, the
// payment ledger, status resolution, cancellation and reporting. It is the
// only writer of installment status and fine amounts.
type Service struct {
	repos *repository.Repositories
	cache Cache
	now   func() time.Time
}

// NewService creates a tuition service over the given repositories. The
// cache may be nil.
func NewService(repos *repository.Repositories, cache Cache) *Service {
	return &Service{
		repos: repos,
		cache: cache,
		now:   time.Now,
	}
}

// NewServiceFromDB creates a tuition service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, cache Cache) *Service {
	return NewService(repository.NewRepositories(db), cache)
}
