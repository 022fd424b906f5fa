package core

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a subscription. Derived states come from
// DeriveStatus; StatusReview is the one manual override and is never derived.
type Status string

const (
	StatusActive  Status = "active"
	StatusDueSoon Status = "due_soon"
	StatusExpired Status = "expired"
	StatusReview  Status = "review"
)

const DefaultCurrency = "JOD"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Customer struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	PhonePrimary   string         `gorm:"size:50" json:"phone_primary"`
	PhoneSecondary string         `gorm:"size:50" json:"phone_secondary"`
	Email          string         `gorm:"size:255" json:"email"`
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type ServiceType struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Subscription struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"`
	ServiceTypeID   uint            `gorm:"not null;index" json:"service_type_id"`
	DomainOrService string          `gorm:"size:255;not null" json:"domain_or_service"`
	StartDate       time.Time       `gorm:"not null" json:"start_date"`
	EndDate         time.Time       `gorm:"not null;index" json:"end_date"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Currency        string          `gorm:"size:3;not null;default:JOD" json:"currency"`
	// Either StatusReview (sticky manual override) or the value last derived
	// from EndDate. Readers go through EffectiveStatus, never this column.
	Status      Status    `gorm:"size:20;not null" json:"status"`
	Notes       string    `gorm:"type:text" json:"notes"`
	DataVersion int       `gorm:"not null;default:1" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Customer    Customer    `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	ServiceType ServiceType `gorm:"foreignKey:ServiceTypeID" json:"service_type,omitempty"`
}

// RenewalLog is the insert-only audit trail of the renewal transactor.
type RenewalLog struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriptionID uint      `gorm:"not null;index" json:"subscription_id"`
	OldEndDate     time.Time `gorm:"not null" json:"old_end_date"`
	NewEndDate     time.Time `gorm:"not null" json:"new_end_date"`
	RenewedBy      string    `gorm:"size:100;not null" json:"renewed_by"`
	RenewedAt      time.Time `gorm:"autoCreateTime" json:"renewed_at"`
}

// RenewalNotice is a copy-on-issue snapshot. Everything a recipient sees is
// copied at creation time; later edits or renewals of the subscription leave
// an issued notice untouched.
type RenewalNotice struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID            string          `gorm:"size:36;not null;uniqueIndex" json:"uuid"`
	SubscriptionID  uint            `gorm:"not null" json:"subscription_id"`
	CustomerName    string          `gorm:"size:255;not null" json:"customer_name"`
	ServiceName     string          `gorm:"size:255;not null" json:"service_name"`
	DomainOrService string          `gorm:"size:255;not null" json:"domain_or_service"`
	EndDate         time.Time       `gorm:"not null" json:"end_date"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Notification is a persisted record worth remembering (digest sends, read
// markers). Live alerts are computed per read and never stored here.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:100" json:"id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
