package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/batcom-app/batcom-backend/internal/reconcile"
)

type fakeSMSService struct {
	handleFn func(ctx context.Context, sender, text string) (*reconcile.Result, error)
	calls    int
}

func (f *fakeSMSService) HandleInboundNotification(ctx context.Context, sender, text string) (*reconcile.Result, error) {
	f.calls++
	return f.handleFn(ctx, sender, text)
}

func TestSMSWebhookNormalizesAliasFields(t *testing.T) {
	svc := &fakeSMSService{
		handleFn: func(ctx context.Context, sender, text string) (*reconcile.Result, error) {
			if sender != "+84901234567" {
				t.Fatalf("unexpected sender %q", sender)
			}
			if !strings.Contains(text, "BCM1234ABCD") {
				t.Fatalf("unexpected text %q", text)
			}
			return &reconcile.Result{Outcome: reconcile.OutcomeCompleted, TrackingCode: "BCM1234ABCD"}, nil
		},
	}

	// "from" and "message" are aliases some forwarder apps use.
	body := `{"from":"+84901234567","message":"Ban da nhan 50.000 VND tu 0987654321. ND: BCM1234ABCD"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/sms", strings.NewReader(body))
	resp := httptest.NewRecorder()
	SMSWebhook(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"outcome":"completed"`) {
		t.Fatalf("expected completed outcome in body %s", resp.Body.String())
	}
}

func TestSMSWebhookAcknowledgesEmptyText(t *testing.T) {
	svc := &fakeSMSService{
		handleFn: func(ctx context.Context, sender, text string) (*reconcile.Result, error) {
			t.Fatal("engine must not see empty notifications")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/sms", strings.NewReader(`{"sender":"MOMO"}`))
	resp := httptest.NewRecorder()
	SMSWebhook(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty text got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"outcome":"ignored"`) {
		t.Fatalf("expected ignored outcome in body %s", resp.Body.String())
	}
}

func TestSMSWebhookAcceptsKeyField(t *testing.T) {
	svc := &fakeSMSService{
		handleFn: func(ctx context.Context, sender, text string) (*reconcile.Result, error) {
			if !strings.Contains(text, "BCM1234ABCD") {
				t.Fatalf("unexpected text %q", text)
			}
			return &reconcile.Result{Outcome: reconcile.OutcomeCompleted, TrackingCode: "BCM1234ABCD"}, nil
		},
	}

	// MacroDroid-style forwarders put the message content under "key".
	body := `{"sender":"MoMo","key":"Ban vua nhan 50,000d tu 0987654321. ND: BCM1234ABCD USER."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/sms", strings.NewReader(body))
	resp := httptest.NewRecorder()
	SMSWebhook(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("expected one engine call, got %d", svc.calls)
	}
	if !strings.Contains(resp.Body.String(), `"outcome":"completed"`) {
		t.Fatalf("expected completed outcome in body %s", resp.Body.String())
	}
}

func TestSMSWebhookAcknowledgesMalformedBody(t *testing.T) {
	svc := &fakeSMSService{
		handleFn: func(ctx context.Context, sender, text string) (*reconcile.Result, error) {
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/sms", strings.NewReader("not json"))
	resp := httptest.NewRecorder()
	SMSWebhook(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for malformed body got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"outcome":"ignored"`) {
		t.Fatalf("expected ignored outcome in body %s", resp.Body.String())
	}
	if svc.calls != 0 {
		t.Fatal("engine must not see undecodable payloads")
	}
}
