package core

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"renewtrack.com/renewtrack/utils"
)

// RenewalPeriodDays is the fixed annual renewal period. Plain day arithmetic,
// no calendar-month awareness; leap years land on the correct Gregorian date
// 365 days later.
const RenewalPeriodDays = 365

const renewMaxAttempts = 3

type RenewalResult struct {
	SubscriptionID uint      `json:"subscription_id"`
	OldEndDate     time.Time `json:"old_end_date"`
	NewEndDate     time.Time `json:"new_end_date"`
}

// Renew advances a subscription by one year and records the audit row, as a
// single atomic unit. The baseline is max(end_date, today): a still-active
// subscription keeps its paid-for time, an expired one restarts from today
// without a silent gap. Deliberately not idempotent; every call adds a year.
//
// Lost updates are prevented optimistically: the write is guarded by the
// subscription's data_version, and a stale read is retried with a fresh one.
// Renewals of different subscriptions never contend.
func Renew(db *gorm.DB, subscriptionID uint, actor string, today time.Time) (*RenewalResult, error) {
	for attempt := 0; attempt < renewMaxAttempts; attempt++ {
		var sub Subscription
		err := db.First(&sub, subscriptionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subscription %d: %w", subscriptionID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("load subscription: %w", err)
		}

		oldEndDate := utils.TruncateToDay(sub.EndDate)
		baseline := oldEndDate
		if baseline.Before(utils.TruncateToDay(today)) {
			baseline = utils.TruncateToDay(today)
		}
		newEndDate := utils.AddDays(baseline, RenewalPeriodDays)

		stale := false
		err = db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&Subscription{}).
				Where("id = ? AND data_version = ?", sub.ID, sub.DataVersion).
				Updates(map[string]interface{}{
					"end_date":     newEndDate,
					"status":       StatusActive,
					"data_version": sub.DataVersion + 1,
				})
			if res.Error != nil {
				return fmt.Errorf("update subscription: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Someone else renewed between our read and write.
				stale = true
				return ErrConflict
			}

			log := RenewalLog{
				SubscriptionID: sub.ID,
				OldEndDate:     oldEndDate,
				NewEndDate:     newEndDate,
				RenewedBy:      actor,
			}
			if err := tx.Create(&log).Error; err != nil {
				return fmt.Errorf("insert renewal log: %w", err)
			}
			return nil
		})
		if err == nil {
			return &RenewalResult{
				SubscriptionID: sub.ID,
				OldEndDate:     oldEndDate,
				NewEndDate:     newEndDate,
			}, nil
		}
		if stale {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("subscription %d: %w", subscriptionID, ErrConflict)
}
