package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/batcom-app/batcom-backend/internal/notify"
	"github.com/batcom-app/batcom-backend/internal/orders"
	"github.com/batcom-app/batcom-backend/pkg/config"
)

type fakeNotifyService struct {
	summaryFn func(ctx context.Context) ([]orders.UserDebt, error)
	sendFn    func(ctx context.Context, userID string, sendToAll bool) (bool, error)
	sweepFn   func(ctx context.Context, now time.Time) (*notify.SweepResult, error)
}

func (f *fakeNotifyService) UnpaidSummary(ctx context.Context) ([]orders.UserDebt, error) {
	return f.summaryFn(ctx)
}

func (f *fakeNotifyService) SendReminder(ctx context.Context, userID string, sendToAll bool) (bool, error) {
	return f.sendFn(ctx, userID, sendToAll)
}

func (f *fakeNotifyService) Sweep(ctx context.Context, now time.Time) (*notify.SweepResult, error) {
	return f.sweepFn(ctx, now)
}

func TestReminderSummaryListsDebts(t *testing.T) {
	svc := &fakeNotifyService{
		summaryFn: func(ctx context.Context) ([]orders.UserDebt, error) {
			return []orders.UserDebt{
				{UserID: "u1", UserName: "Minh", Total: 120000, OrderCount: 3},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reminders/summary", nil)
	resp := httptest.NewRecorder()
	ReminderSummary(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Minh") {
		t.Fatalf("expected debtor in body %s", resp.Body.String())
	}
}

func TestReminderSendForwardsTarget(t *testing.T) {
	var gotUser string
	var gotAll bool
	svc := &fakeNotifyService{
		sendFn: func(ctx context.Context, userID string, sendToAll bool) (bool, error) {
			gotUser, gotAll = userID, sendToAll
			return true, nil
		},
	}

	body := `{"userId":"u1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders", strings.NewReader(body))
	resp := httptest.NewRecorder()
	ReminderSend(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUser != "u1" || gotAll {
		t.Fatalf("unexpected forward user=%q all=%v", gotUser, gotAll)
	}
	if !strings.Contains(resp.Body.String(), `"sent":true`) {
		t.Fatalf("expected sent flag in body %s", resp.Body.String())
	}
}

func TestReminderSweepAuth(t *testing.T) {
	called := false
	svc := &fakeNotifyService{
		sweepFn: func(ctx context.Context, now time.Time) (*notify.SweepResult, error) {
			called = true
			return &notify.SweepResult{Sent: true, Users: 2}, nil
		},
	}
	cfg := config.ReminderConfig{Secret: "sweep-secret"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/sweep", nil)
	req.Header.Set("X-Cron-Secret", "wrong")
	resp := httptest.NewRecorder()
	ReminderSweep(svc, cfg, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret got %d", resp.Code)
	}
	if called {
		t.Fatal("sweep must not run on auth failure")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/reminders/sweep", nil)
	req.Header.Set("X-Cron-Secret", "sweep-secret")
	resp = httptest.NewRecorder()
	ReminderSweep(svc, cfg, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("sweep did not run")
	}
}

func TestReminderSweepRejectsMissingSecretConfig(t *testing.T) {
	svc := &fakeNotifyService{
		sweepFn: func(ctx context.Context, now time.Time) (*notify.SweepResult, error) {
			t.Fatal("sweep must not run without a configured secret")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/sweep", nil)
	resp := httptest.NewRecorder()
	ReminderSweep(svc, config.ReminderConfig{}, testLogger())(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when secret unset got %d", resp.Code)
	}
}
