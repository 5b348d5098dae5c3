// Package notify formats and delivers chat notifications: consolidated and
// per-user payment reminders, and the payment-success message fired by the
// reconciliation engine.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/batcom-app/batcom-backend/internal/orders"
	"github.com/batcom-app/batcom-backend/pkg/config"
	"github.com/batcom-app/batcom-backend/pkg/db/models"
	"github.com/batcom-app/batcom-backend/pkg/logger"
)

// Sender delivers chat messages. Every method degrades to a false return on
// transport failure so callers never have to guard against panics or errors
// from the notification path.
type Sender interface {
	SendPaymentReminder(ctx context.Context, debts []orders.UserDebt) bool
	SendIndividualPaymentReminder(ctx context.Context, debt orders.UserDebt) bool
	SendPaymentSuccessNotification(ctx context.Context, intent *models.PaymentIntent) bool
}

type webhookSender struct {
	httpClient *http.Client
	webhookURL string
	logg       *logger.Logger
}

// NewSender builds a chat-webhook sender. An empty webhook URL yields a
// sender whose deliveries all report false.
func NewSender(cfg config.NotifyConfig, logg *logger.Logger) Sender {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookSender{
		httpClient: &http.Client{Timeout: timeout},
		webhookURL: cfg.ChatWebhookURL,
		logg:       logg,
	}
}

func (s *webhookSender) SendPaymentReminder(ctx context.Context, debts []orders.UserDebt) bool {
	if len(debts) == 0 {
		return false
	}

	var b strings.Builder
	b.WriteString("Nhac nho thanh toan tien com:\n")
	for i, debt := range debts {
		b.WriteString(fmt.Sprintf("%d. %s: %s (%d mon, ngay %s)\n",
			i+1, debt.UserName, formatVND(debt.Total), debt.OrderCount, strings.Join(debt.Dates, ", ")))
	}
	b.WriteString("Vui long chuyen khoan som nhe!")

	return s.post(ctx, b.String())
}

func (s *webhookSender) SendIndividualPaymentReminder(ctx context.Context, debt orders.UserDebt) bool {
	if debt.Total <= 0 {
		return false
	}

	msg := fmt.Sprintf("%s oi, ban con no %s tien com (ngay %s). Chuyen khoan giup minh nhe!",
		debt.UserName, formatVND(debt.Total), strings.Join(debt.Dates, ", "))
	return s.post(ctx, msg)
}

func (s *webhookSender) SendPaymentSuccessNotification(ctx context.Context, intent *models.PaymentIntent) bool {
	if intent == nil {
		return false
	}

	amount := intent.Amount
	if intent.PaidAmount != nil {
		amount = *intent.PaidAmount
	}
	msg := fmt.Sprintf("%s da thanh toan %s (ma %s). Cam on!",
		intent.UserName, formatVND(amount), intent.TrackingCode)
	return s.post(ctx, msg)
}

func (s *webhookSender) post(ctx context.Context, text string) bool {
	if s.webhookURL == "" {
		s.logg.Warn(ctx, "chat webhook url not configured, dropping notification")
		return false
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		s.logg.Error(ctx, "encode chat message", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		s.logg.Error(ctx, "build chat request", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logg.Error(ctx, "deliver chat message", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logg.Warn(ctx, fmt.Sprintf("chat webhook returned status %d", resp.StatusCode))
		return false
	}
	return true
}

// formatVND renders an amount with dot thousands separators and the dong
// suffix, e.g. 50000 -> "50.000d".
func formatVND(amount int64) string {
	digits := fmt.Sprintf("%d", amount)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	offset := len(digits) % 3
	if offset > 0 {
		b.WriteString(digits[:offset])
	}
	for i := offset; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(digits[i : i+3])
	}

	out := b.String() + "d"
	if negative {
		out = "-" + out
	}
	return out
}
