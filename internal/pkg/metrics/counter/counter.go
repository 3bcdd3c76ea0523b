package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/escolafin/EscolaFin/app/models"
	"github.com/escolafin/EscolaFin/internal/pkg/cache"
	"github.com/escolafin/EscolaFin/internal/pkg/database"
)

const (
	installmentsCreatedKey = "billing:counters:installments_created"
	paymentsRecordedKey    = "billing:counters:payments_recorded"
)

// AddInstallmentsCreated adds a generation run's created rows to the pending
// counter for an institution in Redis
func AddInstallmentsCreated(institutionID uint, n int) error {
	if n <= 0 {
		return nil
	}
	ctx := context.Background()
	field := strconv.FormatUint(uint64(institutionID), 10)
	return cache.GetClient().HIncrBy(ctx, installmentsCreatedKey, field, int64(n)).Err()
}

// AddPaymentRecorded increments the pending payment counter for an
// institution in Redis
func AddPaymentRecorded(institutionID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(institutionID), 10)
	return cache.GetClient().HIncrBy(ctx, paymentsRecordedKey, field, 1).Err()
}

// FlushAll flushes all pending billing counters into the daily stats table
func FlushAll() error {
	if err := flushHashToDailyStats(installmentsCreatedKey, "installments_created"); err != nil {
		return err
	}
	if err := flushHashToDailyStats(paymentsRecordedKey, "payments_recorded"); err != nil {
		return err
	}
	return nil
}

// flushHashToDailyStats drains a Redis hash atomically and upserts batched
// increments into today's daily_billing_stats rows.
// Uses RENAME to a temporary key for atomic drain without losing in-flight increments.
func flushHashToDailyStats(redisKey, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	// Atomically move the hash to a temp key for draining
	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		institutionID uint64
		inc           int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{institutionID: id, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].institutionID < pairs[j].institutionID })

	day := time.Now().Format("2006-01-02")
	db := database.GetDB()
	for _, p := range pairs {
		row := models.DailyBillingStat{
			InstitutionID: uint(p.institutionID),
			Day:           day,
		}
		switch column {
		case "installments_created":
			row.InstallmentsCreated = p.inc
		case "payments_recorded":
			row.PaymentsRecorded = p.inc
		}
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "institution_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				column: gorm.Expr(column+" + ?", p.inc),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
