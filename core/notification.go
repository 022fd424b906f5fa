package core

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"renewtrack.com/renewtrack/utils"
)

// Mailer is the outbound mail collaborator. Implementations live in
// infrastructure/communication.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LiveAlert is a view value computed from current subscription state on every
// read. It is never persisted; its id is namespaced so it cannot collide with
// stored notification ids.
type LiveAlert struct {
	ID             string    `json:"id"`
	SubscriptionID uint      `json:"subscription_id"`
	Type           Status    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CustomerName   string    `json:"customer_name"`
	Domain         string    `json:"domain"`
	EndDate        time.Time `json:"end_date"`
	DaysLeft       int       `json:"days_left"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type NotificationFeed struct {
	Live        []LiveAlert    `json:"notifications"`
	Stored      []Notification `json:"stored"`
	UnreadCount int            `json:"unread_count"`
}

const storedNotificationLimit = 50

// dueSubscriptions selects everything inside the 30-day attention window,
// expired included, soonest-ending first. Subscriptions of trashed customers
// drop out of the feed.
func dueSubscriptions(db *gorm.DB, today time.Time) ([]Subscription, error) {
	cutoff := utils.AddDays(today, DueSoonWindowDays)

	var subs []Subscription
	err := db.
		Joins("JOIN customers ON customers.id = subscriptions.customer_id AND customers.deleted_at IS NULL").
		Preload("Customer").
		Preload("ServiceType").
		Where("subscriptions.end_date <= ?", cutoff).
		Order("subscriptions.end_date ASC").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("select due subscriptions: %w", err)
	}
	return subs, nil
}

func buildLiveAlert(sub Subscription, today time.Time) LiveAlert {
	daysLeft := sub.DaysLeft(today)

	var alertType Status
	var title string
	if daysLeft < 0 {
		alertType = StatusExpired
		title = fmt.Sprintf("Expired: %s - %s", sub.Customer.Name, sub.DomainOrService)
	} else {
		alertType = StatusDueSoon
		title = fmt.Sprintf("Due in %d days: %s - %s", daysLeft, sub.Customer.Name, sub.DomainOrService)
	}

	return LiveAlert{
		ID:             fmt.Sprintf("live_%d", sub.ID),
		SubscriptionID: sub.ID,
		Type:           alertType,
		Title:          title,
		Message: fmt.Sprintf("%s | %s | End: %s | %s %s",
			sub.ServiceType.Name, sub.DomainOrService,
			utils.FormatDate(sub.EndDate), sub.Price.StringFixed(2), sub.Currency),
		CustomerName: sub.Customer.Name,
		Domain:       sub.DomainOrService,
		EndDate:      sub.EndDate,
		DaysLeft:     daysLeft,
		IsRead:       false,
		CreatedAt:    today,
	}
}

// ListNotifications merges the live alert set with the persisted records.
// The unread count covers the live set only: live alerts carry no durable
// read flag, so marking one read does not change what the next call
// recomputes. That asymmetry is inherited behavior, kept on purpose.
func ListNotifications(db *gorm.DB, today time.Time) (*NotificationFeed, error) {
	subs, err := dueSubscriptions(db, today)
	if err != nil {
		return nil, err
	}
	live := utils.Map(subs, func(s Subscription) LiveAlert {
		return buildLiveAlert(s, today)
	})

	var stored []Notification
	if err := db.Order("created_at DESC").Limit(storedNotificationLimit).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("select stored notifications: %w", err)
	}

	return &NotificationFeed{
		Live:        live,
		Stored:      stored,
		UnreadCount: len(live),
	}, nil
}

// MarkRead upserts a read marker for the given notification id. Idempotent;
// repeating it is a no-op. It does not suppress live alerts (see
// ListNotifications).
func MarkRead(db *gorm.DB, notificationID string) error {
	if notificationID == "" {
		return fmt.Errorf("notification id is required: %w", ErrValidation)
	}

	marker := Notification{
		ID:     notificationID,
		Type:   "read",
		Title:  notificationID,
		IsRead: true,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_read"}),
	}).Create(&marker).Error
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

type DigestResult struct {
	Sent         bool   `json:"sent"`
	Recipient    string `json:"recipient,omitempty"`
	ExpiredCount int    `json:"expired_count"`
	DueSoonCount int    `json:"due_soon_count"`
}

// SendDigest emails the operator everything inside the attention window.
// Missing mail configuration is an error even when nothing is due; the
// operator asked for a send and has to learn it can never work. With nothing
// due it is a no-op: no email, no record. A provider failure surfaces and
// leaves no record behind; only a successful send writes the email_sent
// notification. There is no de-duplication, repeated calls send repeated
// emails.
func SendDigest(ctx context.Context, db *gorm.DB, mailer Mailer, recipient string, today time.Time) (*DigestResult, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mail provider: %w", ErrMailNotConfigured)
	}
	if recipient == "" {
		return nil, fmt.Errorf("recipient address: %w", ErrMailNotConfigured)
	}

	subs, err := dueSubscriptions(db, today)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return &DigestResult{Sent: false}, nil
	}

	expired := utils.Filter(subs, func(s Subscription) bool {
		return s.DaysLeft(today) < 0
	})
	dueSoon := utils.Filter(subs, func(s Subscription) bool {
		return s.DaysLeft(today) >= 0
	})

	subject := fmt.Sprintf("RenewTrack Alert: %d expired, %d due soon", len(expired), len(dueSoon))
	body := buildDigestHTML(expired, dueSoon, today)

	if err := mailer.Send(ctx, recipient, subject, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMailProvider, err)
	}

	record := Notification{
		ID:      fmt.Sprintf("email_%d", time.Now().UnixNano()),
		Type:    "email_sent",
		Title:   fmt.Sprintf("Email sent to %s", recipient),
		Message: fmt.Sprintf("%d expired, %d due soon", len(expired), len(dueSoon)),
		IsRead:  true,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("record digest notification: %w", err)
	}

	return &DigestResult{
		Sent:         true,
		Recipient:    recipient,
		ExpiredCount: len(expired),
		DueSoonCount: len(dueSoon),
	}, nil
}
