package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/batcom-app/batcom-backend/pkg/enums"
	"github.com/batcom-app/batcom-backend/pkg/types"
)

// PaymentIntent is the internal record of an expected payment. The tracking
// code is the join key between external payment signals (webhooks, forwarded
// SMS notifications) and internal state; rows are never deleted so the table
// doubles as the reconciliation audit trail.
type PaymentIntent struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	TrackingCode string              `gorm:"column:tracking_code;uniqueIndex;not null"`
	OrderCode    int64               `gorm:"column:order_code;uniqueIndex;not null"`
	UserID       string              `gorm:"column:user_id;not null"`
	UserName     string              `gorm:"column:user_name"`
	UserEmail    *string             `gorm:"column:user_email"`
	Amount       int64               `gorm:"column:amount;not null"`
	OrderIDs     types.UUIDList      `gorm:"column:order_ids;type:jsonb;serializer:json"`
	OrderDate    string              `gorm:"column:order_date"`
	Status       enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ExpiresAt    time.Time           `gorm:"column:expires_at;not null"`

	PaidAmount *int64     `gorm:"column:paid_amount"`
	PaidAt     *time.Time `gorm:"column:paid_at"`
	FailReason *string    `gorm:"column:fail_reason"`

	CheckoutURL          *string `gorm:"column:checkout_url"`
	QRCode               *string `gorm:"column:qr_code"`
	BankBin              *string `gorm:"column:bank_bin"`
	BankAccountNumber    *string `gorm:"column:bank_account_number"`
	BankAccountName      *string `gorm:"column:bank_account_name"`
	CounterAccountNumber *string `gorm:"column:counter_account_number"`
	CounterAccountName   *string `gorm:"column:counter_account_name"`
	GatewayReference     *string `gorm:"column:gateway_reference"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsTerminal reports whether the intent already reached a final status.
func (p *PaymentIntent) IsTerminal() bool {
	if p == nil {
		return false
	}
	return p.Status.IsTerminal()
}
