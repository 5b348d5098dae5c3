package controllers

import (
	"crypto/hmac"
	"net/http"
	"time"

	"github.com/batcom-app/batcom-backend/api/responses"
	"github.com/batcom-app/batcom-backend/api/validators"
	"github.com/batcom-app/batcom-backend/internal/notify"
	"github.com/batcom-app/batcom-backend/pkg/config"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
)

const cronSecretHeader = "X-Cron-Secret"

type sendReminderRequest struct {
	UserID    string `json:"userId"`
	SendToAll bool   `json:"sendToAll"`
}

// ReminderSummary lists per-user unpaid totals, largest first.
func ReminderSummary(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		summary, err := svc.UnpaidSummary(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"users": summary})
	}
}

// ReminderSend triggers a broadcast or per-user reminder on demand.
func ReminderSend(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		var req sendReminderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sent, err := svc.SendReminder(ctx, req.UserID, req.SendToAll)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"sent": sent})
	}
}

// ReminderSweep is the scheduler-facing trigger. It is guarded by a shared
// secret header; the window check inside the sweep decides whether anything
// actually goes out.
func ReminderSweep(svc notify.Service, cfg config.ReminderConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}
		if cfg.Secret == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reminder secret not configured"))
			return
		}

		provided := r.Header.Get(cronSecretHeader)
		if !hmac.Equal([]byte(provided), []byte(cfg.Secret)) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid cron secret"))
			return
		}

		result, err := svc.Sweep(ctx, time.Now())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
