// Package reconcile implements the reconciliation engine: three independent
// signal paths (gateway webhook, forwarded SMS, status poll) converging on
// one idempotent pending→terminal transition per payment intent.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/batcom-app/batcom-backend/internal/matching"
	"github.com/batcom-app/batcom-backend/internal/orders"
	"github.com/batcom-app/batcom-backend/internal/payments"
	"github.com/batcom-app/batcom-backend/pkg/db/models"
	"github.com/batcom-app/batcom-backend/pkg/enums"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
	"github.com/batcom-app/batcom-backend/pkg/metrics"
	"github.com/batcom-app/batcom-backend/pkg/payos"
	"github.com/batcom-app/batcom-backend/pkg/types"
)

// Outcomes reported per processed signal.
const (
	OutcomeCompleted       = "completed"
	OutcomeFailed          = "failed"
	OutcomeAlreadyTerminal = "already_terminal"
	OutcomeNoMatch         = "no_match"
	OutcomeIgnored         = "ignored"
)

// Result is the outcome of one reconciliation signal. Matching failures are
// reported here as benign outcomes, never as errors.
type Result struct {
	Outcome       string `json:"outcome"`
	TrackingCode  string `json:"trackingCode,omitempty"`
	OrdersUpdated int    `json:"ordersUpdated"`
	Message       string `json:"message,omitempty"`
}

// SyncResult mirrors the live gateway state next to the local one.
type SyncResult struct {
	GatewayStatus string `json:"gatewayStatus"`
	LocalStatus   string `json:"localStatus"`
	Completed     bool   `json:"completed"`
	OrdersUpdated int    `json:"ordersUpdated"`
}

// GatewayInfoClient is the slice of the gateway adapter the engine needs for
// the poll path.
type GatewayInfoClient interface {
	GetPaymentInfo(ctx context.Context, orderCode int64) (*payos.PaymentInfo, error)
}

// SuccessNotifier is the hook fired after a completion transition. A false
// return means the notification did not go out; the completion stands either
// way.
type SuccessNotifier interface {
	SendPaymentSuccessNotification(ctx context.Context, intent *models.PaymentIntent) bool
}

// Service defines the three reconciliation entry points.
type Service interface {
	HandleGatewayWebhook(ctx context.Context, payload *payos.WebhookPayload) (*Result, error)
	HandleInboundNotification(ctx context.Context, sender, text string) (*Result, error)
	SyncGatewayStatus(ctx context.Context, orderCode int64) (*SyncResult, error)
}

// ServiceParams wires engine dependencies. Gateway, Notifier, and Metrics are
// optional.
type ServiceParams struct {
	Intents  payments.Repository
	Orders   orders.Repository
	Gateway  GatewayInfoClient
	Notifier SuccessNotifier
	Logger   *logger.Logger
	Metrics  *metrics.ReconcileMetrics
	Now      func() time.Time
}

type service struct {
	intents  payments.Repository
	orders   orders.Repository
	gateway  GatewayInfoClient
	notifier SuccessNotifier
	logg     *logger.Logger
	metrics  *metrics.ReconcileMetrics
	now      func() time.Time
}

// NewService wires the reconciliation engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Intents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment intent repository required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reconcile logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		intents:  params.Intents,
		orders:   params.Orders,
		gateway:  params.Gateway,
		notifier: params.Notifier,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      params.Now,
	}, nil
}

// HandleGatewayWebhook applies a verified webhook delivery. Signature
// verification happens at the transport boundary; the engine trusts its input.
func (s *service) HandleGatewayWebhook(ctx context.Context, payload *payos.WebhookPayload) (*Result, error) {
	if payload == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook payload required")
	}

	intent, err := s.intents.FindByOrderCode(ctx, payload.Data.OrderCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup intent by order code")
	}
	if intent == nil {
		s.count("webhook", OutcomeNoMatch)
		return &Result{Outcome: OutcomeNoMatch, Message: "no payment intent for order code"}, nil
	}

	ctx = s.logg.WithTrackingCode(ctx, intent.TrackingCode)

	if intent.IsTerminal() {
		s.count("webhook", OutcomeAlreadyTerminal)
		return &Result{Outcome: OutcomeAlreadyTerminal, TrackingCode: intent.TrackingCode}, nil
	}

	if !payload.Success || payload.Data.Code != "00" {
		reason := payload.Data.Desc
		if reason == "" {
			reason = fmt.Sprintf("gateway result code %s", payload.Data.Code)
		}
		updated, err := s.intents.MarkFailed(ctx, intent.ID, reason)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark intent failed")
		}
		if !updated {
			s.count("webhook", OutcomeAlreadyTerminal)
			return &Result{Outcome: OutcomeAlreadyTerminal, TrackingCode: intent.TrackingCode}, nil
		}
		s.logg.Warn(ctx, "payment intent failed: "+reason)
		s.count("webhook", OutcomeFailed)
		return &Result{Outcome: OutcomeFailed, TrackingCode: intent.TrackingCode, Message: reason}, nil
	}

	return s.complete(ctx, "webhook", intent, payments.CompletionParams{
		PaidAmount:           payload.Data.Amount,
		PaidAt:               s.now(),
		CounterAccountNumber: payload.Data.CounterAccountNumber,
		CounterAccountName:   payload.Data.CounterAccountName,
		GatewayReference:     nonEmptyPtr(payload.Data.Reference),
	})
}

// HandleInboundNotification processes a forwarded SMS/app notification. Every
// non-match is acknowledged as a benign result so noisy forwarders never see
// errors.
func (s *service) HandleInboundNotification(ctx context.Context, sender, text string) (*Result, error) {
	if !matching.IsPaymentNotification(sender, text) {
		s.count("sms", OutcomeIgnored)
		return &Result{Outcome: OutcomeIgnored, Message: "not a payment notification"}, nil
	}

	parsed := matching.ParseNotification(text)
	if parsed == nil {
		s.count("sms", OutcomeIgnored)
		return &Result{Outcome: OutcomeIgnored, Message: "no amount found in notification"}, nil
	}

	code := parsed.TrackingCode
	if code == "" {
		code = matching.ExtractTrackingCode(text)
	}
	if code == "" {
		s.count("sms", OutcomeNoMatch)
		return &Result{Outcome: OutcomeNoMatch, Message: "no tracking code in notification"}, nil
	}

	intent, err := s.intents.FindPendingByTrackingCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup intent by tracking code")
	}
	if intent == nil {
		s.count("sms", OutcomeNoMatch)
		return &Result{Outcome: OutcomeNoMatch, TrackingCode: code, Message: "no pending payment for code"}, nil
	}

	ctx = s.logg.WithTrackingCode(ctx, intent.TrackingCode)

	// A code match is strong evidence of intent; an out-of-tolerance amount is
	// logged but does not block completion.
	if !matching.AmountWithinTolerance(parsed.Amount, intent.Amount) {
		s.logg.Warn(ctx, fmt.Sprintf(
			"notification amount %d deviates from expected %d beyond tolerance, completing on code match",
			parsed.Amount, intent.Amount))
	}

	return s.complete(ctx, "sms", intent, payments.CompletionParams{
		PaidAmount:           parsed.Amount,
		PaidAt:               s.now(),
		CounterAccountNumber: nonEmptyPtr(parsed.Sender),
	})
}

// SyncGatewayStatus pulls live gateway state for an order code and completes
// the local intent when the gateway already settled it.
func (s *service) SyncGatewayStatus(ctx context.Context, orderCode int64) (*SyncResult, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway client not configured")
	}

	info, err := s.gateway.GetPaymentInfo(ctx, orderCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch gateway payment info")
	}

	intent, err := s.intents.FindByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup intent by order code")
	}
	if intent == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment intent for order code")
	}

	ctx = s.logg.WithTrackingCode(ctx, intent.TrackingCode)

	result := &SyncResult{
		GatewayStatus: info.Status,
		LocalStatus:   intent.Status.String(),
	}
	if info.Status != enums.GatewayStatusPaid.String() || intent.IsTerminal() {
		return result, nil
	}

	completion := payments.CompletionParams{
		PaidAmount: info.AmountPaid,
		PaidAt:     s.now(),
	}
	if len(info.Transactions) > 0 {
		tx := info.Transactions[0]
		completion.GatewayReference = nonEmptyPtr(tx.Reference)
		completion.CounterAccountNumber = tx.CounterAccountNumber
		completion.CounterAccountName = tx.CounterAccountName
	}

	completed, err := s.complete(ctx, "poll", intent, completion)
	if err != nil {
		return nil, err
	}
	result.Completed = completed.Outcome == OutcomeCompleted
	result.OrdersUpdated = completed.OrdersUpdated
	if result.Completed {
		result.LocalStatus = "completed"
	}
	return result, nil
}

// complete runs the guarded terminal transition, fans out the paid flag, and
// fires the success hook. Losing the conditional update is a no-op, not an
// error.
func (s *service) complete(ctx context.Context, source string, intent *models.PaymentIntent, params payments.CompletionParams) (*Result, error) {
	updated, err := s.intents.MarkCompleted(ctx, intent.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark intent completed")
	}
	if !updated {
		s.count(source, OutcomeAlreadyTerminal)
		return &Result{Outcome: OutcomeAlreadyTerminal, TrackingCode: intent.TrackingCode}, nil
	}

	ordersUpdated := s.fanOut(ctx, intent)

	intent.Status = enums.PaymentStatusCompleted
	intent.PaidAmount = &params.PaidAmount
	paidAt := params.PaidAt
	intent.PaidAt = &paidAt
	if s.notifier != nil {
		if !s.notifier.SendPaymentSuccessNotification(ctx, intent) {
			s.logg.Warn(ctx, "payment success notification not delivered")
		}
	}

	s.logg.Info(ctx, fmt.Sprintf("payment completed via %s, %d orders marked paid", source, ordersUpdated))
	s.count(source, OutcomeCompleted)
	return &Result{
		Outcome:       OutcomeCompleted,
		TrackingCode:  intent.TrackingCode,
		OrdersUpdated: ordersUpdated,
	}, nil
}

// fanOut flips the paid flag on every linked order. Individual failures are
// logged and aggregated; the batch keeps going and a later retry can heal any
// missed order.
func (s *service) fanOut(ctx context.Context, intent *models.PaymentIntent) int {
	paidAt := s.now()
	updatedCount := 0
	var errs error
	failures := 0

	var seen types.UUIDList
	for _, orderID := range intent.OrderIDs {
		// Order lists come from client input and may repeat an id.
		if seen.Contains(orderID) {
			continue
		}
		seen = append(seen, orderID)

		updated, err := s.orders.MarkPaid(ctx, orderID, paidAt)
		if err != nil {
			failures++
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", orderID, err))
			continue
		}
		if updated {
			updatedCount++
		}
	}

	if errs != nil {
		s.logg.Error(ctx, fmt.Sprintf("paid-flag fan-out updated %d of %d orders", updatedCount, len(intent.OrderIDs)), errs)
	}
	s.metrics.AddOrderUpdates(updatedCount)
	s.metrics.AddOrderFailures(failures)
	return updatedCount
}

func (s *service) count(source, outcome string) {
	s.metrics.IncOutcome(source, outcome)
}

func nonEmptyPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
