package webhooks

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/batcom-app/batcom-backend/api/responses"
	"github.com/batcom-app/batcom-backend/internal/matching"
	"github.com/batcom-app/batcom-backend/internal/reconcile"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
)

// SMSWebhookService is the slice of the reconciliation engine the inbound
// notification webhook needs.
type SMSWebhookService interface {
	HandleInboundNotification(ctx context.Context, sender, text string) (*reconcile.Result, error)
}

// SMSWebhook ingests forwarded bank SMS and app notifications. Forwarder apps
// retry on anything but 2xx and their payload shapes vary, so decoding is
// deliberately lenient and every non-match is acknowledged as a benign result.
func SMSWebhook(svc SMSWebhookService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		var payload matching.InboundPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logg.Warn(ctx, "undecodable notification payload: "+err.Error())
			responses.WriteSuccess(w, &reconcile.Result{
				Outcome: reconcile.OutcomeIgnored,
				Message: "unreadable notification payload",
			})
			return
		}

		msg := payload.Normalize()
		if msg.Text == "" {
			responses.WriteSuccess(w, &reconcile.Result{
				Outcome: reconcile.OutcomeIgnored,
				Message: "empty notification text",
			})
			return
		}

		result, err := svc.HandleInboundNotification(ctx, msg.Sender, msg.Text)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
