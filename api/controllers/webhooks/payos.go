package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/batcom-app/batcom-backend/api/responses"
	"github.com/batcom-app/batcom-backend/internal/reconcile"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
	"github.com/batcom-app/batcom-backend/pkg/payos"
)

// PayOSWebhookService is the slice of the reconciliation engine the gateway
// webhook needs.
type PayOSWebhookService interface {
	HandleGatewayWebhook(ctx context.Context, payload *payos.WebhookPayload) (*reconcile.Result, error)
}

type payosWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type payosClient interface {
	ChecksumKey() string
}

// PayOSWebhook receives gateway payment confirmations. Signature failures are
// the only rejections; once a delivery verifies, the endpoint acknowledges it
// even when processing fails, so the gateway never retries into a poison loop.
// The status poll heals anything a dropped delivery would have settled.
func PayOSWebhook(svc PayOSWebhookService, client payosClient, guard payosWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		payload, err := payos.ParseWebhook(body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload"))
			return
		}

		if !payload.Verify(client.ChecksumKey()) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		eventID := strings.TrimSpace(payload.Data.Reference)
		if eventID == "" {
			eventID = payload.Data.PaymentLinkID
		}

		if eventID != "" {
			alreadyProcessed, guardErr := guard.CheckAndMark(ctx, eventID)
			if guardErr != nil {
				// Dedupe is advisory; the conditional status update still
				// guarantees once-only effects.
				if logg != nil {
					logg.Warn(ctx, "webhook dedupe unavailable, continuing")
				}
			} else if alreadyProcessed {
				responses.WriteSuccess(w, &reconcile.Result{Outcome: reconcile.OutcomeAlreadyTerminal})
				return
			}
		}

		result, err := svc.HandleGatewayWebhook(ctx, payload)
		if err != nil {
			if eventID != "" {
				_ = guard.Delete(ctx, eventID)
			}
			if logg != nil {
				logg.Error(ctx, "gateway webhook processing failed", err)
			}
			// Acknowledge anyway; see the handler comment.
			responses.WriteSuccess(w, &reconcile.Result{Outcome: reconcile.OutcomeIgnored, Message: "processing deferred"})
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("gateway webhook for order %d: %s", payload.Data.OrderCode, result.Outcome))
		}
		responses.WriteSuccess(w, result)
	}
}
