package payos

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/batcom-app/batcom-backend/pkg/config"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "payos-test", Output: io.Discard})
}

func testConfig(baseURL string) config.PayOSConfig {
	return config.PayOSConfig{
		ClientID:    "client-id",
		APIKey:      "api-key",
		ChecksumKey: testChecksumKey,
		BaseURL:     baseURL,
		ReturnURL:   "https://batcom.app/return",
		CancelURL:   "https://batcom.app/cancel",
		HTTPTimeout: 5 * time.Second,
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	ctx := context.Background()
	logg := testLogger()

	cfg := testConfig("https://api-merchant.payos.vn")
	cfg.ClientID = "  "
	if _, err := NewClient(ctx, cfg, logg); err == nil {
		t.Fatal("expected error for missing client id")
	}

	cfg = testConfig("https://api-merchant.payos.vn")
	cfg.ChecksumKey = ""
	if _, err := NewClient(ctx, cfg, logg); err == nil {
		t.Fatal("expected error for missing checksum key")
	}

	if _, err := NewClient(ctx, testConfig("https://api-merchant.payos.vn"), nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

func TestCreatePaymentLink(t *testing.T) {
	var gotAuth struct {
		clientID string
		apiKey   string
	}
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/payment-requests" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth.clientID = r.Header.Get("x-client-id")
		gotAuth.apiKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"code": "00",
			"desc": "success",
			"data": map[string]any{
				"bin":           "970422",
				"accountNumber": "0123456789",
				"accountName":   "BAT COM MAN",
				"amount":        50000,
				"description":   "BCM12340829ABCD",
				"orderCode":     12345,
				"currency":      "VND",
				"paymentLinkId": "link-abc",
				"status":        "PENDING",
				"checkoutUrl":   "https://pay.payos.vn/web/link-abc",
				"qrCode":        "00020101021238570010A000000727",
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	data, err := client.CreatePaymentLink(context.Background(), CreatePaymentLinkParams{
		OrderCode:   12345,
		Amount:      50000,
		Description: "BCM12340829ABCD",
		BuyerName:   "Nguyen Van A",
	})
	if err != nil {
		t.Fatalf("create payment link: %v", err)
	}

	if gotAuth.clientID != "client-id" || gotAuth.apiKey != "api-key" {
		t.Fatalf("missing auth headers: %+v", gotAuth)
	}
	if data.CheckoutURL != "https://pay.payos.vn/web/link-abc" {
		t.Fatalf("unexpected checkout url: %s", data.CheckoutURL)
	}
	if data.Status != "PENDING" || data.OrderCode != 12345 {
		t.Fatalf("unexpected link data: %+v", data)
	}

	wantSig := Sign(map[string]string{
		"amount":      "50000",
		"cancelUrl":   "https://batcom.app/cancel",
		"description": "BCM12340829ABCD",
		"orderCode":   "12345",
		"returnUrl":   "https://batcom.app/return",
	}, testChecksumKey)
	if gotBody["signature"] != wantSig {
		t.Fatalf("expected request signature %s, got %v", wantSig, gotBody["signature"])
	}
	if gotBody["buyerName"] != "Nguyen Van A" {
		t.Fatalf("expected buyer name forwarded, got %v", gotBody["buyerName"])
	}
}

func TestCreatePaymentLinkGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code": "231",
			"desc": "order code already exists",
		})
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.CreatePaymentLink(context.Background(), CreatePaymentLinkParams{
		OrderCode: 12345,
		Amount:    50000,
	})
	if err == nil {
		t.Fatal("expected gateway error")
	}
	if domainErr := pkgerrors.As(err); domainErr == nil || domainErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetPaymentInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v2/payment-requests/12345" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"code": "00",
			"desc": "success",
			"data": map[string]any{
				"id":              "link-abc",
				"orderCode":       12345,
				"amount":          50000,
				"amountPaid":      50000,
				"amountRemaining": 0,
				"status":          "PAID",
				"createdAt":       "2025-08-29T14:00:00+07:00",
				"transactions": []map[string]any{
					{
						"reference":           "FT251234567890",
						"amount":              50000,
						"accountNumber":       "0123456789",
						"description":         "BCM12340829ABCD",
						"transactionDateTime": "2025-08-29 14:05:00",
					},
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	info, err := client.GetPaymentInfo(context.Background(), 12345)
	if err != nil {
		t.Fatalf("get payment info: %v", err)
	}
	if info.Status != "PAID" || info.AmountPaid != 50000 {
		t.Fatalf("unexpected payment info: %+v", info)
	}
	if len(info.Transactions) != 1 || info.Transactions[0].Reference != "FT251234567890" {
		t.Fatalf("unexpected transactions: %+v", info.Transactions)
	}
}

func TestDoMapsHTTPStatus(t *testing.T) {
	for status, want := range map[int]pkgerrors.Code{
		http.StatusUnauthorized:        pkgerrors.CodeUnauthorized,
		http.StatusNotFound:            pkgerrors.CodeNotFound,
		http.StatusTooManyRequests:     pkgerrors.CodeRateLimit,
		http.StatusInternalServerError: pkgerrors.CodeDependency,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client, err := NewClient(context.Background(), testConfig(server.URL), testLogger())
		if err != nil {
			t.Fatalf("new client: %v", err)
		}

		_, err = client.GetPaymentInfo(context.Background(), 1)
		server.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		domainErr := pkgerrors.As(err)
		if domainErr == nil || domainErr.Code() != want {
			t.Fatalf("status %d: expected code %s, got %v", status, want, err)
		}
	}
}

func TestCancelPaymentLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/payment-requests/12345/cancel" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode cancel body: %v", err)
		}
		if body["cancellationReason"] != "intent expired" {
			t.Fatalf("unexpected cancellation reason: %v", body["cancellationReason"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"code": "00",
			"desc": "success",
			"data": map[string]any{
				"id":        "link-abc",
				"orderCode": 12345,
				"amount":    50000,
				"status":    "CANCELLED",
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), testConfig(server.URL), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	info, err := client.CancelPaymentLink(context.Background(), 12345, "intent expired")
	if err != nil {
		t.Fatalf("cancel payment link: %v", err)
	}
	if info.Status != "CANCELLED" {
		t.Fatalf("expected cancelled status, got %s", info.Status)
	}
}

func TestChecksumKeyAccessor(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig("https://api-merchant.payos.vn"), testLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.ChecksumKey() != testChecksumKey {
		t.Fatalf("unexpected checksum key: %s", client.ChecksumKey())
	}

	var nilClient *Client
	if nilClient.ChecksumKey() != "" {
		t.Fatal("expected empty key from nil client")
	}
}
