package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/batcom-app/batcom-backend/api/responses"
	"github.com/batcom-app/batcom-backend/api/validators"
	"github.com/batcom-app/batcom-backend/internal/payments"
	"github.com/batcom-app/batcom-backend/internal/reconcile"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
	"github.com/batcom-app/batcom-backend/pkg/types"
	"github.com/batcom-app/batcom-backend/pkg/vietqr"
)

type createIntentRequest struct {
	UserID    string         `json:"userId" validate:"required"`
	UserName  string         `json:"userName"`
	UserEmail string         `json:"userEmail" validate:"omitempty,email"`
	Amount    int64          `json:"amount" validate:"required,min=1"`
	OrderIDs  types.UUIDList `json:"orderIds"`
	OrderDate string         `json:"orderDate"`
}

type createIntentResponse struct {
	TrackingCode string     `json:"trackingCode"`
	OrderCode    int64      `json:"orderCode"`
	Amount       int64      `json:"amount"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	Reused       bool       `json:"reused"`
	CheckoutURL  *string    `json:"checkoutUrl,omitempty"`
	QRCode       *string    `json:"qrCode,omitempty"`
	QRImageURL   string     `json:"qrImageUrl,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
}

// PaymentCreate mints (or reuses) a payment intent and returns the checkout
// rendering data.
func PaymentCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var req createIntentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateIntent(ctx, payments.CreateIntentInput{
			UserID:    req.UserID,
			UserName:  req.UserName,
			UserEmail: req.UserEmail,
			Amount:    req.Amount,
			OrderIDs:  req.OrderIDs,
			OrderDate: req.OrderDate,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		intent := result.Intent
		resp := createIntentResponse{
			TrackingCode: intent.TrackingCode,
			OrderCode:    intent.OrderCode,
			Amount:       intent.Amount,
			Status:       intent.Status.String(),
			ExpiresAt:    intent.ExpiresAt,
			Reused:       result.Reused,
			CheckoutURL:  intent.CheckoutURL,
			QRCode:       intent.QRCode,
			PaidAt:       intent.PaidAt,
		}
		// Routing fields are persisted on the intent, so reused intents render
		// the same scannable QR as fresh ones.
		if intent.BankBin != nil && intent.BankAccountNumber != nil {
			params := vietqr.Params{
				Bin:           *intent.BankBin,
				AccountNumber: *intent.BankAccountNumber,
				Amount:        intent.Amount,
				AddInfo:       intent.TrackingCode,
			}
			if intent.BankAccountName != nil {
				params.AccountName = *intent.BankAccountName
			}
			if imageURL, imgErr := vietqr.ImageURL(params); imgErr == nil {
				resp.QRImageURL = imageURL
			}
		}

		status := http.StatusCreated
		if result.Reused {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, resp)
	}
}

// PaymentStatus is the polling surface used by the client while the payer is
// off in their banking app.
func PaymentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code query parameter is required"))
			return
		}

		result, err := svc.CheckStatus(ctx, code)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GatewaySyncService is the slice of the reconciliation engine the sync
// endpoint needs.
type GatewaySyncService interface {
	SyncGatewayStatus(ctx context.Context, orderCode int64) (*reconcile.SyncResult, error)
}

// PaymentGatewaySync pulls live gateway state for an order code, completing
// the local intent when the gateway already settled it.
func PaymentGatewaySync(svc GatewaySyncService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("orderCode"))
		if raw == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderCode query parameter is required"))
			return
		}
		orderCode, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "orderCode must be numeric").WithDetails(map[string]any{"field": "orderCode"}))
			return
		}

		result, err := svc.SyncGatewayStatus(ctx, orderCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
