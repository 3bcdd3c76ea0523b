package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/escolafin/EscolaFin/internal/pkg/cache"
	"github.com/escolafin/EscolaFin/internal/pkg/database"
)

const (
	cacheKeyPlatform    = "statistics:platform"
	cacheKeyInstitution = "statistics:institution:%d"
	cacheExpiration     = 30 * time.Minute
)

// PlatformStats aggregates cross-tenant totals for the admin surface.
type PlatformStats struct {
	TotalInstitutions int64 `json:"total_institutions"`
	TotalStudents     int64 `json:"total_students"`
	TotalInstallments int64 `json:"total_installments"`
	TotalPayments     int64 `json:"total_payments"`
}

// InstitutionStats aggregates one institution's collection numbers.
type InstitutionStats struct {
	InstitutionID     uint  `json:"institution_id"`
	OpenInstallments  int64 `json:"open_installments"`
	LateInstallments  int64 `json:"late_installments"`
	BilledCents       int64 `json:"billed_cents"`
	CollectedCents    int64 `json:"collected_cents"`
	CollectedToday    int64 `json:"collected_today_cents"`
	PaymentsRecorded  int64 `json:"payments_recorded"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the platform cache entry is stale.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()
	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the platform cache entry when stale.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if _, err := computePlatformStats(); err != nil {
			log.Printf("statistics cache refresh failed: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh the cache.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()
	lastCacheUpdate = time.Time{}
}

// GetPlatformStats returns the cached platform totals, recomputing on a
// cache miss.
func GetPlatformStats() PlatformStats {
	UpdateCacheIfNeeded()

	var stats PlatformStats
	store := cache.NewStore()
	if raw, err := store.Get(context.Background(), cacheKeyPlatform); err == nil && raw != "" {
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			return stats
		}
	}

	stats, err := computePlatformStats()
	if err != nil {
		log.Printf("Error computing platform statistics: %v", err)
	}
	return stats
}

func computePlatformStats() (PlatformStats, error) {
	db := database.GetDB()
	var stats PlatformStats

	if err := db.Model(&models.Institution{}).Count(&stats.TotalInstitutions).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Student{}).Count(&stats.TotalStudents).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Installment{}).Count(&stats.TotalInstallments).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Payment{}).Count(&stats.TotalPayments).Error; err != nil {
		return stats, err
	}

	store := cache.NewStore()
	if raw, err := json.Marshal(stats); err == nil {
		if err := store.Set(context.Background(), cacheKeyPlatform, string(raw), cacheExpiration); err != nil {
			log.Printf("Error caching platform statistics: %v", err)
		}
	}
	return stats, nil
}

// GetInstitutionStats returns one institution's collection numbers from
// cache or database.
func GetInstitutionStats(institutionID uint) (InstitutionStats, error) {
	key := fmt.Sprintf(cacheKeyInstitution, institutionID)
	store := cache.NewStore()

	var stats InstitutionStats
	if raw, err := store.Get(context.Background(), key); err == nil && raw != "" {
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			return stats, nil
		}
	}

	db := database.GetDB()
	stats.InstitutionID = institutionID

	if err := db.Model(&models.Installment{}).
		Where("institution_id = ? AND status IN ?", institutionID,
			[]string{models.InstallmentStatusPending, models.InstallmentStatusPartial}).
		Count(&stats.OpenInstallments).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Installment{}).
		Where("institution_id = ? AND status = ?", institutionID, models.InstallmentStatusLate).
		Count(&stats.LateInstallments).Error; err != nil {
		return stats, err
	}

	// Billed = base - discount + fine over non-cancelled rows.
	row := db.Model(&models.Installment{}).
		Where("institution_id = ? AND status <> ?", institutionID, models.InstallmentStatusCancelled).
		Select("COALESCE(SUM(base_cents - LEAST(discount_cents, base_cents) + fine_cents), 0)").
		Row()
	if err := row.Scan(&stats.BilledCents); err != nil {
		return stats, err
	}

	row = db.Model(&models.Payment{}).
		Where("institution_id = ?", institutionID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Row()
	if err := row.Scan(&stats.CollectedCents); err != nil {
		return stats, err
	}

	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)
	row = db.Model(&models.Payment{}).
		Where("institution_id = ? AND recorded_at BETWEEN ? AND ?", institutionID, todayStart, todayEnd).
		Select("COALESCE(SUM(amount_cents), 0)").
		Row()
	if err := row.Scan(&stats.CollectedToday); err != nil {
		return stats, err
	}

	if err := db.Model(&models.Payment{}).
		Where("institution_id = ?", institutionID).
		Count(&stats.PaymentsRecorded).Error; err != nil {
		return stats, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := store.Set(context.Background(), key, string(raw), cacheExpiration); err != nil {
			log.Printf("Error caching statistics for institution %d: %v", institutionID, err)
		}
	}
	return stats, nil
}
