package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"renewtrack.com/renewtrack/utils"
)

type ReportSummary struct {
	TotalCustomers      int64           `json:"total_customers"`
	TotalSubscriptions  int64           `json:"total_subscriptions"`
	ActiveSubscriptions int64           `json:"active_subscriptions"`
	DueSoon             int64           `json:"due_soon"`
	Expired             int64           `json:"expired"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	ActiveRevenue       decimal.Decimal `json:"active_revenue"`
}

type PeriodBreakdown struct {
	Period  string          `json:"period"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type CustomerRevenue struct {
	CustomerID   uint            `json:"customer_id"`
	Name         string          `json:"name"`
	SubCount     int             `json:"sub_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type ServiceBreakdown struct {
	ServiceTypeID uint            `json:"service_type_id"`
	Name          string          `json:"name"`
	Count         int             `json:"count"`
	Revenue       decimal.Decimal `json:"revenue"`
}

type RenewalEntry struct {
	ID              uint      `json:"id"`
	SubscriptionID  uint      `json:"subscription_id"`
	OldEndDate      time.Time `json:"old_end_date"`
	NewEndDate      time.Time `json:"new_end_date"`
	RenewedBy       string    `json:"renewed_by"`
	RenewedAt       time.Time `json:"renewed_at"`
	DomainOrService string    `json:"domain_or_service"`
	CustomerName    string    `json:"customer_name"`
	ServiceName     string    `json:"service_name"`
}

type Report struct {
	Summary          ReportSummary      `json:"summary"`
	Monthly          []PeriodBreakdown  `json:"monthly"`
	Yearly           []PeriodBreakdown  `json:"yearly"`
	TopCustomers     []CustomerRevenue  `json:"top_customers"`
	ServiceBreakdown []ServiceBreakdown `json:"service_breakdown"`
	RecentRenewals   []RenewalEntry     `json:"recent_renewals"`
	CurrentYear      string             `json:"current_year"`
}

type Dashboard struct {
	TotalCustomers      int64          `json:"total_customers"`
	ActiveSubscriptions int64          `json:"active_subscriptions"`
	DueSoon             int64          `json:"due_soon"`
	Expired             int64          `json:"expired"`
	RecentRenewals      []RenewalEntry `json:"recent_renewals"`
}

const (
	topCustomerLimit      = 10
	reportRenewalLimit    = 30
	dashboardRenewalLimit = 10
)

// BuildReport is the read-only rollup behind the password-gated reports
// endpoint. All monetary sums are accumulated with decimal arithmetic in Go;
// SQL SUM over float columns is never used, so drift cannot creep in.
// Counts follow the end-date windows regardless of a review override.
func BuildReport(db *gorm.DB, today time.Time) (*Report, error) {
	today = utils.TruncateToDay(today)
	cutoff := utils.AddDays(today, DueSoonWindowDays)

	var totalCustomers int64
	if err := db.Model(&Customer{}).Count(&totalCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	// Trashed customers drop out of every rollup, matching the
	// notification feed. Restoring the customer brings their revenue back.
	var subs []Subscription
	err := db.Preload("Customer").Preload("ServiceType").
		Joins("JOIN customers ON customers.id = subscriptions.customer_id AND customers.deleted_at IS NULL").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}

	summary := ReportSummary{
		TotalCustomers:     totalCustomers,
		TotalSubscriptions: int64(len(subs)),
		TotalRevenue:       decimal.Zero,
		ActiveRevenue:      decimal.Zero,
	}
	for _, s := range subs {
		end := utils.TruncateToDay(s.EndDate)
		summary.TotalRevenue = summary.TotalRevenue.Add(s.Price)
		if !end.Before(today) {
			summary.ActiveSubscriptions++
			summary.ActiveRevenue = summary.ActiveRevenue.Add(s.Price)
			if !end.After(cutoff) {
				summary.DueSoon++
			}
		} else {
			summary.Expired++
		}
	}

	currentYear := fmt.Sprintf("%04d", today.Year())

	monthly := breakdownByPeriod(
		utils.Filter(subs, func(s Subscription) bool {
			return s.EndDate.UTC().Year() == today.Year()
		}),
		func(s Subscription) string { return fmt.Sprintf("%02d", int(s.EndDate.UTC().Month())) },
		false,
	)
	yearly := breakdownByPeriod(subs,
		func(s Subscription) string { return fmt.Sprintf("%04d", s.EndDate.UTC().Year()) },
		true,
	)

	topCustomers := rankCustomers(subs)
	services := breakdownByService(subs)

	renewals, err := recentRenewals(db, reportRenewalLimit)
	if err != nil {
		return nil, err
	}

	return &Report{
		Summary:          summary,
		Monthly:          monthly,
		Yearly:           yearly,
		TopCustomers:     topCustomers,
		ServiceBreakdown: services,
		RecentRenewals:   renewals,
		CurrentYear:      currentYear,
	}, nil
}

// BuildDashboard is the lightweight landing-page rollup; same windows as the
// report but no revenue figures, so no password re-check is required.
func BuildDashboard(db *gorm.DB, today time.Time) (*Dashboard, error) {
	today = utils.TruncateToDay(today)
	cutoff := utils.AddDays(today, DueSoonWindowDays)

	liveSubs := db.Model(&Subscription{}).
		Joins("JOIN customers ON customers.id = subscriptions.customer_id AND customers.deleted_at IS NULL")

	var totalCustomers, active, dueSoon, expired int64
	if err := db.Model(&Customer{}).Count(&totalCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := liveSubs.Session(&gorm.Session{}).Where("end_date >= ?", today).Count(&active).Error; err != nil {
		return nil, fmt.Errorf("count active: %w", err)
	}
	if err := liveSubs.Session(&gorm.Session{}).Where("end_date >= ? AND end_date <= ?", today, cutoff).Count(&dueSoon).Error; err != nil {
		return nil, fmt.Errorf("count due soon: %w", err)
	}
	if err := liveSubs.Session(&gorm.Session{}).Where("end_date < ?", today).Count(&expired).Error; err != nil {
		return nil, fmt.Errorf("count expired: %w", err)
	}

	renewals, err := recentRenewals(db, dashboardRenewalLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalCustomers:      totalCustomers,
		ActiveSubscriptions: active,
		DueSoon:             dueSoon,
		Expired:             expired,
		RecentRenewals:      renewals,
	}, nil
}

func breakdownByPeriod(subs []Subscription, keyFunc func(Subscription) string, descending bool) []PeriodBreakdown {
	groups := utils.GroupBy(subs, keyFunc)

	result := make([]PeriodBreakdown, 0, len(groups))
	for period, items := range groups {
		revenue := decimal.Zero
		for _, s := range items {
			revenue = revenue.Add(s.Price)
		}
		result = append(result, PeriodBreakdown{
			Period:  period,
			Count:   len(items),
			Revenue: revenue,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if descending {
			return result[i].Period > result[j].Period
		}
		return result[i].Period < result[j].Period
	})
	return result
}

func rankCustomers(subs []Subscription) []CustomerRevenue {
	groups := utils.GroupBy(subs, func(s Subscription) uint { return s.CustomerID })

	ranked := make([]CustomerRevenue, 0, len(groups))
	for customerID, items := range groups {
		revenue := decimal.Zero
		for _, s := range items {
			revenue = revenue.Add(s.Price)
		}
		ranked = append(ranked, CustomerRevenue{
			CustomerID:   customerID,
			Name:         items[0].Customer.Name,
			SubCount:     len(items),
			TotalRevenue: revenue,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].TotalRevenue.GreaterThan(ranked[j].TotalRevenue)
	})
	if len(ranked) > topCustomerLimit {
		ranked = ranked[:topCustomerLimit]
	}
	return ranked
}

func breakdownByService(subs []Subscription) []ServiceBreakdown {
	groups := utils.GroupBy(subs, func(s Subscription) uint { return s.ServiceTypeID })

	result := make([]ServiceBreakdown, 0, len(groups))
	for serviceTypeID, items := range groups {
		revenue := decimal.Zero
		for _, s := range items {
			revenue = revenue.Add(s.Price)
		}
		result = append(result, ServiceBreakdown{
			ServiceTypeID: serviceTypeID,
			Name:          items[0].ServiceType.Name,
			Count:         len(items),
			Revenue:       revenue,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

func recentRenewals(db *gorm.DB, limit int) ([]RenewalEntry, error) {
	var entries []RenewalEntry
	err := db.Table("renewal_logs").
		Select(`renewal_logs.*,
			subscriptions.domain_or_service AS domain_or_service,
			customers.name AS customer_name,
			service_types.name AS service_name`).
		Joins("JOIN subscriptions ON subscriptions.id = renewal_logs.subscription_id").
		Joins("JOIN customers ON customers.id = subscriptions.customer_id").
		Joins("JOIN service_types ON service_types.id = subscriptions.service_type_id").
		Order("renewal_logs.renewed_at DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load recent renewals: %w", err)
	}
	return entries, nil
}
