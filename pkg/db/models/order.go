package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a single user's daily group-order entry. Ordering lives in the
// hosted app; this service only owns the paid flag, which the reconciliation
// engine flips exactly once per completed payment.
type Order struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    string     `gorm:"column:user_id;not null;index"`
	UserName  string     `gorm:"column:user_name"`
	OrderDate string     `gorm:"column:order_date;index"`
	ItemName  string     `gorm:"column:item_name"`
	UnitPrice int64      `gorm:"column:unit_price;not null"`
	Quantity  int        `gorm:"column:quantity;not null;default:1"`
	Amount    int64      `gorm:"column:amount;not null"`
	IsPaid    bool       `gorm:"column:is_paid;not null;default:false"`
	PaidAt    *time.Time `gorm:"column:paid_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
