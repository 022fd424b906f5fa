package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueNotice snapshots the subscription's current renewal terms into a new
// notice addressed by a fresh random token. The token is the only access key
// for the public endpoint, so it has to be unguessable; uuid.NewString is
// crypto/rand backed v4.
func IssueNotice(db *gorm.DB, subscriptionID uint) (*RenewalNotice, error) {
	var sub Subscription
	err := db.Preload("Customer").Preload("ServiceType").First(&sub, subscriptionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("subscription %d: %w", subscriptionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	notice := RenewalNotice{
		UUID:            uuid.NewString(),
		SubscriptionID:  sub.ID,
		CustomerName:    sub.Customer.Name,
		ServiceName:     sub.ServiceType.Name,
		DomainOrService: sub.DomainOrService,
		EndDate:         sub.EndDate,
		Price:           sub.Price,
		Currency:        sub.Currency,
	}
	if err := db.Create(&notice).Error; err != nil {
		return nil, fmt.Errorf("insert notice: %w", err)
	}
	return &notice, nil
}

// GetNotice serves the public endpoint: read-only, unauthenticated, keyed by
// token alone.
func GetNotice(db *gorm.DB, token string) (*RenewalNotice, error) {
	var notice RenewalNotice
	err := db.Where("uuid = ?", token).First(&notice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("notice %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load notice: %w", err)
	}
	return &notice, nil
}

func ListNotices(db *gorm.DB) ([]RenewalNotice, error) {
	var notices []RenewalNotice
	if err := db.Order("created_at DESC").Find(&notices).Error; err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// NoticeURL is the shareable path for an issued notice.
func NoticeURL(token string) string {
	return "/notice/" + token
}
