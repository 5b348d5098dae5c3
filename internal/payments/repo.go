// Package payments owns the pending-payment ledger: payment intents keyed by
// tracking code, their expiry, and their one-way lifecycle.
package payments

import (
	"context"
	"errors"
	"time"

	"github.com/batcom-app/batcom-backend/pkg/db/models"
	"github.com/batcom-app/batcom-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompletionParams carries the settlement details written on a successful
// transition.
type CompletionParams struct {
	PaidAmount           int64
	PaidAt               time.Time
	CounterAccountNumber *string
	CounterAccountName   *string
	GatewayReference     *string
}

// Repository exposes persistence helpers for payment intents. Lookups return
// (nil, nil) when no row matches so callers can treat "not found" as a state
// rather than an error.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, intent *models.PaymentIntent) error
	FindByTrackingCode(ctx context.Context, code string) (*models.PaymentIntent, error)
	FindPendingByTrackingCode(ctx context.Context, code string) (*models.PaymentIntent, error)
	FindByOrderCode(ctx context.Context, orderCode int64) (*models.PaymentIntent, error)
	FindActive(ctx context.Context, userID string, amount int64, now time.Time) (*models.PaymentIntent, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, params CompletionParams) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payment-intent repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, intent *models.PaymentIntent) error {
	if intent.ID == uuid.Nil {
		intent.ID = uuid.New()
	}
	if intent.Status == "" {
		intent.Status = enums.PaymentStatusPending
	}
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *repositoryImpl) FindByTrackingCode(ctx context.Context, code string) (*models.PaymentIntent, error) {
	return r.findOne(ctx, "tracking_code = ?", code)
}

func (r *repositoryImpl) FindPendingByTrackingCode(ctx context.Context, code string) (*models.PaymentIntent, error) {
	return r.findOne(ctx, "tracking_code = ? AND status = ?", code, enums.PaymentStatusPending)
}

func (r *repositoryImpl) FindByOrderCode(ctx context.Context, orderCode int64) (*models.PaymentIntent, error) {
	return r.findOne(ctx, "order_code = ?", orderCode)
}

// FindActive returns the newest pending, unexpired intent for a user+amount
// pair, letting a re-opened payment flow reuse the same code instead of
// minting a new one.
func (r *repositoryImpl) FindActive(ctx context.Context, userID string, amount int64, now time.Time) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND amount = ? AND status = ? AND expires_at > ?",
			userID, amount, enums.PaymentStatusPending, now).
		Order("created_at DESC").
		First(&intent).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// MarkCompleted performs the pending→completed transition as a conditional
// update. A signal that lost the race observes zero rows affected and the
// paid fields stay untouched.
func (r *repositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, params CompletionParams) (bool, error) {
	updates := map[string]any{
		"status":      enums.PaymentStatusCompleted,
		"paid_amount": params.PaidAmount,
		"paid_at":     params.PaidAt,
	}
	if params.CounterAccountNumber != nil {
		updates["counter_account_number"] = *params.CounterAccountNumber
	}
	if params.CounterAccountName != nil {
		updates["counter_account_name"] = *params.CounterAccountName
	}
	if params.GatewayReference != nil {
		updates["gateway_reference"] = *params.GatewayReference
	}
	return r.transition(ctx, id, updates)
}

// MarkFailed performs the pending→failed transition under the same guard.
func (r *repositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	return r.transition(ctx, id, map[string]any{
		"status":      enums.PaymentStatusFailed,
		"fail_reason": reason,
	})
}

func (r *repositoryImpl) transition(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) findOne(ctx context.Context, query string, args ...any) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at DESC").
		First(&intent).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}
