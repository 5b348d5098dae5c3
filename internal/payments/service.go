package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/batcom-app/batcom-backend/internal/matching"
	"github.com/batcom-app/batcom-backend/pkg/config"
	"github.com/batcom-app/batcom-backend/pkg/db/models"
	"github.com/batcom-app/batcom-backend/pkg/enums"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
	"github.com/batcom-app/batcom-backend/pkg/payos"
	"github.com/batcom-app/batcom-backend/pkg/types"
)

// Status strings returned by the polling surface. "not_found" is distinct
// from "pending": an unknown code must never read as an in-flight payment.
const (
	StatusNotFound = "not_found"
)

// GatewayClient is the slice of the gateway adapter the ledger needs.
type GatewayClient interface {
	CreatePaymentLink(ctx context.Context, params payos.CreatePaymentLinkParams) (*payos.PaymentLinkData, error)
}

// CreateIntentInput describes a new (or reusable) payment intent.
type CreateIntentInput struct {
	UserID    string
	UserName  string
	UserEmail string
	Amount    int64
	OrderIDs  types.UUIDList
	OrderDate string
}

// CreateIntentResult carries the intent to render. Checkout and bank routing
// fields are stored on the intent itself so reused intents render the same
// checkout data as fresh ones.
type CreateIntentResult struct {
	Intent *models.PaymentIntent
	Reused bool
}

// StatusPayment is the client-visible payment summary.
type StatusPayment struct {
	Amount     int64      `json:"amount"`
	PaidAmount *int64     `json:"paidAmount"`
	PaidAt     *time.Time `json:"paidAt"`
}

// StatusResult is the polling-surface response shape.
type StatusResult struct {
	Code    string         `json:"code"`
	Status  string         `json:"status"`
	IsPaid  bool           `json:"isPaid"`
	Payment *StatusPayment `json:"payment"`
}

// Service defines ledger operations.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*CreateIntentResult, error)
	CheckStatus(ctx context.Context, code string) (*StatusResult, error)
}

// ServiceParams wires ledger dependencies.
type ServiceParams struct {
	Repo    Repository
	Gateway GatewayClient
	Logger  *logger.Logger
	Config  config.PaymentConfig
	Now     func() time.Time
}

type service struct {
	repo    Repository
	gateway GatewayClient
	logg    *logger.Logger
	cfg     config.PaymentConfig
	now     func() time.Time
}

// NewService wires ledger dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:    params.Repo,
		gateway: params.Gateway,
		logg:    params.Logger,
		cfg:     params.Config,
		now:     params.Now,
	}, nil
}

// CreateIntent returns the active intent for user+amount when one exists,
// otherwise mints a tracking code, creates the gateway link, and persists a
// fresh intent.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*CreateIntentResult, error) {
	if input.UserID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Amount < s.cfg.MinAmount {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount must be at least %d", s.cfg.MinAmount))
	}

	now := s.now()

	existing, err := s.repo.FindActive(ctx, input.UserID, input.Amount, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup active intent")
	}
	if existing != nil {
		ctx = s.logg.WithTrackingCode(ctx, existing.TrackingCode)
		s.logg.Info(ctx, "reusing active payment intent")
		return &CreateIntentResult{Intent: existing, Reused: true}, nil
	}

	code := matching.GenerateTrackingCode(s.cfg.CodePrefix, input.UserID, now)
	orderCode := now.UnixMilli()
	ctx = s.logg.WithTrackingCode(ctx, code)

	intent := &models.PaymentIntent{
		TrackingCode: code,
		OrderCode:    orderCode,
		UserID:       input.UserID,
		UserName:     input.UserName,
		Amount:       input.Amount,
		OrderIDs:     input.OrderIDs,
		OrderDate:    input.OrderDate,
		ExpiresAt:    now.Add(s.cfg.IntentTTL),
	}
	if input.UserEmail != "" {
		email := input.UserEmail
		intent.UserEmail = &email
	}

	if s.gateway != nil {
		link, err := s.gateway.CreatePaymentLink(ctx, payos.CreatePaymentLinkParams{
			OrderCode:   orderCode,
			Amount:      input.Amount,
			Description: code,
			BuyerName:   input.UserName,
			BuyerEmail:  input.UserEmail,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway payment link")
		}
		intent.CheckoutURL = &link.CheckoutURL
		intent.QRCode = &link.QRCode
		intent.BankBin = &link.Bin
		intent.BankAccountNumber = &link.AccountNumber
		intent.BankAccountName = &link.AccountName
	}

	if err := s.repo.Create(ctx, intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment intent")
	}

	s.logg.Info(ctx, "payment intent created")
	return &CreateIntentResult{Intent: intent}, nil
}

// CheckStatus is the read-only polling lookup by tracking code.
func (s *service) CheckStatus(ctx context.Context, code string) (*StatusResult, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking code is required")
	}

	intent, err := s.repo.FindByTrackingCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment intent")
	}
	if intent == nil {
		return &StatusResult{Code: code, Status: StatusNotFound}, nil
	}

	return &StatusResult{
		Code:   intent.TrackingCode,
		Status: intent.Status.String(),
		IsPaid: intent.Status == enums.PaymentStatusCompleted,
		Payment: &StatusPayment{
			Amount:     intent.Amount,
			PaidAmount: intent.PaidAmount,
			PaidAt:     intent.PaidAt,
		},
	}, nil
}
