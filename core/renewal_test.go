package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"renewtrack.com/renewtrack/utils"
)

func TestRenewFutureEndDateExtendsFromEndDate(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Acme")
	service := seedServiceType(t, db, "Domain")
	today := utils.MustParseDate("2026-06-01")
	sub := seedSubscription(t, db, customer, service, "acme.com", utils.MustParseDate("2026-09-01"), "25.00")

	result, err := Renew(db, sub.ID, "admin", today)
	require.NoError(t, err)

	assert.Equal(t, utils.MustParseDate("2026-09-01"), result.OldEndDate)
	assert.Equal(t, utils.AddDays(utils.MustParseDate("2026-09-01"), 365), result.NewEndDate)

	var updated Subscription
	require.NoError(t, db.First(&updated, sub.ID).Error)
	assert.Equal(t, result.NewEndDate, utils.TruncateToDay(updated.EndDate))
	assert.Equal(t, StatusActive, updated.Status)
}

func TestRenewExpiredRestartsFromToday(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Acme")
	service := seedServiceType(t, db, "Hosting")
	today := utils.MustParseDate("2026-06-01")
	// Expired 5 days ago; the new year starts from today, not the lapse date.
	sub := seedSubscription(t, db, customer, service, "acme.com", utils.MustParseDate("2026-05-27"), "100.00")

	result, err := Renew(db, sub.ID, "admin", today)
	require.NoError(t, err)

	assert.Equal(t, utils.MustParseDate("2026-05-27"), result.OldEndDate)
	assert.Equal(t, utils.AddDays(today, 365), result.NewEndDate)
	assert.True(t, result.OldEndDate.Before(today))
	assert.True(t, result.NewEndDate.After(today))
}

func TestRenewWritesExactlyOneLogRow(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Acme")
	service := seedServiceType(t, db, "License")
	today := utils.MustParseDate("2026-06-01")
	sub := seedSubscription(t, db, customer, service, "crm-license", utils.MustParseDate("2026-10-01"), "0")

	result, err := Renew(db, sub.ID, "ops", today)
	require.NoError(t, err)

	var logs []RenewalLog
	require.NoError(t, db.Where("subscription_id = ?", sub.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, utils.MustParseDate("2026-10-01"), utils.TruncateToDay(logs[0].OldEndDate))
	assert.Equal(t, result.NewEndDate, utils.TruncateToDay(logs[0].NewEndDate))
	assert.Equal(t, "ops", logs[0].RenewedBy)
	assert.False(t, logs[0].RenewedAt.IsZero())
}

func TestRenewNotIdempotent(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Acme")
	service := seedServiceType(t, db, "Domain")
	today := utils.MustParseDate("2026-06-01")
	start := utils.MustParseDate("2026-09-01")
	sub := seedSubscription(t, db, customer, service, "acme.com", start, "25.00")

	first, err := Renew(db, sub.ID, "admin", today)
	require.NoError(t, err)
	second, err := Renew(db, sub.ID, "admin", today)
	require.NoError(t, err)

	assert.Equal(t, utils.AddDays(start, 365), first.NewEndDate)
	assert.Equal(t, utils.AddDays(start, 730), second.NewEndDate)
	assert.Equal(t, first.NewEndDate, second.OldEndDate)
}

func TestRenewClearsReviewOverride(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Acme")
	service := seedServiceType(t, db, "Domain")
	today := utils.MustParseDate("2026-06-01")
	sub := seedSubscription(t, db, customer, service, "acme.com", utils.MustParseDate("2026-09-01"), "25.00")
	require.NoError(t, db.Model(&Subscription{}).Where("id = ?", sub.ID).Update("status", StatusReview).Error)

	_, err := Renew(db, sub.ID, "admin", today)
	require.NoError(t, err)

	var updated Subscription
	require.NoError(t, db.First(&updated, sub.ID).Error)
	assert.Equal(t, StatusActive, updated.Status)
	assert.Equal(t, StatusActive, updated.EffectiveStatus(today))
}

func TestRenewUnknownSubscription(t *testing.T) {
	db := newTestDB(t)

	_, err := Renew(db, 9999, "admin", utils.Today())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConcurrentRenewalsLoseNoUpdates(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Acme")
	service := seedServiceType(t, db, "Domain")
	today := utils.MustParseDate("2026-06-01")
	start := utils.MustParseDate("2026-09-01")
	sub := seedSubscription(t, db, customer, service, "acme.com", start, "25.00")

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// The transactor retries internally; a caller retries on a
			// reported conflict, exactly as the contract asks.
			for {
				_, err := Renew(db, sub.ID, "admin", today)
				if errors.Is(err, ErrConflict) {
					continue
				}
				errs <- err
				return
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var updated Subscription
	require.NoError(t, db.First(&updated, sub.ID).Error)
	assert.Equal(t, utils.AddDays(start, n*365), utils.TruncateToDay(updated.EndDate))

	var logCount int64
	require.NoError(t, db.Model(&RenewalLog{}).Where("subscription_id = ?", sub.ID).Count(&logCount).Error)
	assert.Equal(t, int64(n), logCount)
}
