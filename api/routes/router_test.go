package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/batcom-app/batcom-backend/internal/notify"
	"github.com/batcom-app/batcom-backend/internal/orders"
	"github.com/batcom-app/batcom-backend/internal/payments"
	"github.com/batcom-app/batcom-backend/internal/reconcile"
	"github.com/batcom-app/batcom-backend/pkg/config"
	"github.com/batcom-app/batcom-backend/pkg/logger"
	"github.com/batcom-app/batcom-backend/pkg/payos"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.CreateIntentResult, error) {
	panic("unimplemented")
}

func (stubPaymentsService) CheckStatus(ctx context.Context, code string) (*payments.StatusResult, error) {
	return &payments.StatusResult{Code: code, Status: payments.StatusNotFound}, nil
}

type stubReconcileService struct{}

func (stubReconcileService) HandleGatewayWebhook(ctx context.Context, payload *payos.WebhookPayload) (*reconcile.Result, error) {
	return &reconcile.Result{Outcome: reconcile.OutcomeNoMatch}, nil
}

func (stubReconcileService) HandleInboundNotification(ctx context.Context, sender, text string) (*reconcile.Result, error) {
	return &reconcile.Result{Outcome: reconcile.OutcomeIgnored}, nil
}

func (stubReconcileService) SyncGatewayStatus(ctx context.Context, orderCode int64) (*reconcile.SyncResult, error) {
	panic("unimplemented")
}

type stubNotifyService struct{}

func (stubNotifyService) UnpaidSummary(ctx context.Context) ([]orders.UserDebt, error) {
	return nil, nil
}

func (stubNotifyService) SendReminder(ctx context.Context, userID string, sendToAll bool) (bool, error) {
	return false, nil
}

func (stubNotifyService) Sweep(ctx context.Context, now time.Time) (*notify.SweepResult, error) {
	return &notify.SweepResult{Reason: "no unpaid orders"}, nil
}

type stubIdempotencyStore struct{}

func (stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "bcm:idempotency:" + scope + ":" + id
}

func (stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return true, nil
}

func (stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Env: "test", Port: "0"},
		Reminder: config.ReminderConfig{Secret: "sweep-secret", WindowStartHour: 14, WindowEndHour: 18},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	payosClient, err := payos.NewClient(context.Background(), config.PayOSConfig{
		ClientID:    "client",
		APIKey:      "key",
		ChecksumKey: "checksum",
	}, logg)
	if err != nil {
		t.Fatalf("payos client: %v", err)
	}
	guard, err := reconcile.NewIdempotencyGuard(stubIdempotencyStore{}, time.Hour, "payos")
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // *redis.Client; /health/ready degrades, everything else is unaffected
		payosClient,
		stubPaymentsService{},
		stubReconcileService{},
		stubNotifyService{},
		guard,
		nil,
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if env := resp.Header().Get("X-BatCom-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestPaymentCreateRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestPaymentStatusRequiresCode(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/status", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without code got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments/status?code=BCM1234ABCD", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with code got %d", resp.Code)
	}
}

func TestSMSWebhookAlwaysAcknowledges(t *testing.T) {
	router := newTestRouter(t, testConfig())
	body := `{"sender":"MOMO","text":"Khuyen mai 50% cho don hang tiep theo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/sms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for non-payment notification got %d", resp.Code)
	}
}

func TestPayOSWebhookRejectsBadSignature(t *testing.T) {
	router := newTestRouter(t, testConfig())
	body := `{"code":"00","desc":"success","success":true,"data":{"orderCode":123,"amount":50000},"signature":"deadbeef"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payos", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid signature got %d", resp.Code)
	}
}

func TestReminderSweepRequiresSecret(t *testing.T) {
	router := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/sweep", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reminders/sweep", nil)
	req.Header.Set("X-Cron-Secret", "sweep-secret")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with secret got %d", resp.Code)
	}
}
