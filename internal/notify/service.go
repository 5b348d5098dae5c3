package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/batcom-app/batcom-backend/internal/orders"
	"github.com/batcom-app/batcom-backend/pkg/config"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
)

// SweepResult reports what a reminder sweep did.
type SweepResult struct {
	Sent   bool   `json:"sent"`
	Users  int    `json:"users"`
	Reason string `json:"reason,omitempty"`
}

// Service exposes reminder operations over the unpaid-order ledger.
type Service interface {
	UnpaidSummary(ctx context.Context) ([]orders.UserDebt, error)
	SendReminder(ctx context.Context, userID string, sendToAll bool) (bool, error)
	Sweep(ctx context.Context, now time.Time) (*SweepResult, error)
}

// ServiceParams wires reminder dependencies.
type ServiceParams struct {
	Orders   orders.Repository
	Sender   Sender
	Logger   *logger.Logger
	Reminder config.ReminderConfig
}

type service struct {
	orders orders.Repository
	sender Sender
	logg   *logger.Logger
	cfg    config.ReminderConfig
}

// NewService wires reminder dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification sender required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notify logger required")
	}
	return &service{
		orders: params.Orders,
		sender: params.Sender,
		logg:   params.Logger,
		cfg:    params.Reminder,
	}, nil
}

// UnpaidSummary returns per-user outstanding totals, largest first.
func (s *service) UnpaidSummary(ctx context.Context) ([]orders.UserDebt, error) {
	unpaid, err := s.orders.ListUnpaid(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unpaid orders")
	}
	return orders.BuildUnpaidSummary(unpaid), nil
}

// SendReminder delivers a broadcast or per-user reminder. Nothing to remind
// is a benign false, not an error.
func (s *service) SendReminder(ctx context.Context, userID string, sendToAll bool) (bool, error) {
	if sendToAll {
		summary, err := s.UnpaidSummary(ctx)
		if err != nil {
			return false, err
		}
		if len(summary) == 0 {
			return false, nil
		}
		return s.sender.SendPaymentReminder(ctx, summary), nil
	}

	if userID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id or sendToAll is required")
	}

	unpaid, err := s.orders.ListUnpaidByUser(ctx, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unpaid orders for user")
	}
	summary := orders.BuildUnpaidSummary(unpaid)
	if len(summary) == 0 {
		return false, nil
	}
	return s.sender.SendIndividualPaymentReminder(ctx, summary[0]), nil
}

// Sweep sends the consolidated reminder, but only inside the configured
// local-time window. Outside the window it is a no-op that reports
// Sent=false.
func (s *service) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	local := now.In(s.cfg.Location())
	if local.Hour() < s.cfg.WindowStartHour || local.Hour() >= s.cfg.WindowEndHour {
		return &SweepResult{
			Reason: fmt.Sprintf("outside reminder window %02d:00-%02d:00", s.cfg.WindowStartHour, s.cfg.WindowEndHour),
		}, nil
	}

	summary, err := s.UnpaidSummary(ctx)
	if err != nil {
		return nil, err
	}
	if len(summary) == 0 {
		return &SweepResult{Reason: "no unpaid orders"}, nil
	}

	sent := s.sender.SendPaymentReminder(ctx, summary)
	if !sent {
		s.logg.Warn(ctx, "reminder sweep could not deliver chat message")
	}
	return &SweepResult{Sent: sent, Users: len(summary)}, nil
}
