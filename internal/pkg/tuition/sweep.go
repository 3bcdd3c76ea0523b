package tuition

import (
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/escolafin/EscolaFin/internal/pkg/mail"
)

// StartSweep runs the overdue sweep for every institution on a fixed
// interval until stop is closed. Each pass re-derives Late statuses and
// applies fines; passes are idempotent, so overlapping or repeated runs
// are harmless.
func (s *Service) StartSweep(interval time.Duration, stop <-chan struct{}) {
	go func() {
		log.Infof("tuition: overdue sweep started (interval %s)", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				log.Info("tuition: overdue sweep stopping")
				return
			case <-ticker.C:
				s.sweepAll()
			}
		}
	}()
}

func (s *Service) sweepAll() {
	institutions, err := s.repos.Institution.List()
	if err != nil {
		log.Errorf("tuition: sweep could not list institutions: %v", err)
		return
	}
	for _, inst := range institutions {
		result, err := s.RunSweep(inst.ID)
		if err != nil {
			log.Errorf("tuition: sweep failed for institution %d: %v", inst.ID, err)
			continue
		}
		if result.Examined > 0 {
			log.Infof("tuition: sweep institution %d examined=%d updated=%d failed=%d",
				inst.ID, result.Examined, result.Updated, result.Failed)
		}
		if result.Updated > 0 && inst.ContactEmail != "" {
			if err := mail.SendSweepSummary(inst.ContactEmail, inst.Name, result.Examined, result.Updated); err != nil {
				log.Warnf("tuition: sweep summary mail to institution %d failed: %v", inst.ID, err)
			}
		}
	}
}
