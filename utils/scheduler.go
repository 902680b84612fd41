package utils

import (
	"context"
	"log"
	"time"

	"learnhub/actions"
	"learnhub/models"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeSchedulers starts the maintenance jobs. The caller stops the
// returned cron on shutdown.
func InitializeSchedulers(db *gorm.DB, acts *actions.Actions) *cron.Cron {
	log.Println("[SCHEDULER] Initializing schedulers...")

	c := cron.New()

	// Daily at 2 AM: repair enrollments whose completion date disagrees with progress
	c.AddFunc("0 2 * * *", func() {
		log.Println("[SCHEDULER] Running enrollment reconciliation...")
		ReconcileEnrollments(acts)
	})

	c.AddFunc("@hourly", func() {
		if _, err := PurgeExpiredOTPs(db, time.Now()); err != nil {
			log.Printf("[SCHEDULER] Error purging OTPs: %v", err)
		}
	})

	c.Start()
	log.Println("[SCHEDULER] Schedulers started - reconciliation daily at 2 AM, OTP purge hourly")
	return c
}

func ReconcileEnrollments(acts *actions.Actions) {
	res := acts.ReconcileEnrollments(context.Background())
	if !res.Success {
		log.Printf("[SCHEDULER] Enrollment reconciliation failed: %s", res.Error.Detail)
		return
	}
	log.Printf("[SCHEDULER] Enrollment reconciliation done: %v", res.Data)
}

// PurgeExpiredOTPs removes used codes and codes that expired before the
// start of the given day.
func PurgeExpiredOTPs(db *gorm.DB, at time.Time) (int64, error) {
	cutoff := now.With(at).BeginningOfDay()
	result := db.Unscoped().
		Where("is_used = ? OR expires_at < ?", true, cutoff).
		Delete(&models.OTP{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Purged %d OTP codes", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
