package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"renewtrack.com/renewtrack/utils"
)

// newTestDB opens a fresh in-memory store per test. MaxOpenConns(1) keeps
// every goroutine on the same sqlite connection so concurrent writes
// serialize instead of failing with a busy error.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) Customer {
	t.Helper()
	c := Customer{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedServiceType(t *testing.T, db *gorm.DB, name string) ServiceType {
	t.Helper()
	st := ServiceType{Name: name, IsActive: true}
	require.NoError(t, db.Create(&st).Error)
	return st
}

func seedSubscription(t *testing.T, db *gorm.DB, customer Customer, service ServiceType, domain string, endDate time.Time, price string) Subscription {
	t.Helper()
	sub := Subscription{
		CustomerID:      customer.ID,
		ServiceTypeID:   service.ID,
		DomainOrService: domain,
		StartDate:       utils.AddDays(endDate, -RenewalPeriodDays),
		EndDate:         endDate,
		Price:           decimal.RequireFromString(price),
		Currency:        DefaultCurrency,
		Status:          DeriveStatus(endDate, utils.Today()),
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}
