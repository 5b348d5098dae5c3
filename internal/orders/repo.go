// Package orders persists the group-lunch order ledger: who ordered what,
// for how much, and whether it has been paid.
package orders

import (
	"context"
	"time"

	"github.com/batcom-app/batcom-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, orders []*models.Order) error
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
	ListUnpaid(ctx context.Context) ([]models.Order, error)
	ListUnpaidByUser(ctx context.Context, userID string) ([]models.Order, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateBatch(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	for _, order := range orders {
		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(orders).Error
}

func (r *repositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// MarkPaid flips the paid flag once. The guard on is_paid makes duplicate
// reconciliation signals a no-op; the bool reports whether this call did the
// write.
func (r *repositoryImpl) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]any{
			"is_paid": true,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListUnpaid(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("is_paid = ?", false).
		Order("order_date ASC, created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repositoryImpl) ListUnpaidByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_paid = ?", userID, false).
		Order("order_date ASC, created_at ASC").
		Find(&rows).
		Error
	return rows, err
}
