package payos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/batcom-app/batcom-backend/pkg/config"
	pkgerrors "github.com/batcom-app/batcom-backend/pkg/errors"
	"github.com/batcom-app/batcom-backend/pkg/logger"
)

const successCode = "00"

var (
	errClientIDRequired    = errors.New("payos client id is required")
	errAPIKeyRequired      = errors.New("payos api key is required")
	errChecksumKeyRequired = errors.New("payos checksum key is required")
	errLoggerRequired      = errors.New("payos logger is required")
)

// Client exposes gateway primitives with centralized auth, logging, request
// signing, and error mapping.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	clientID    string
	apiKey      string
	checksumKey string
	returnURL   string
	cancelURL   string
	logger      *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.PayOSConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, errClientIDRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	checksumKey := strings.TrimSpace(cfg.ChecksumKey)
	if checksumKey == "" {
		return nil, errChecksumKeyRequired
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		returnURL:   cfg.ReturnURL,
		cancelURL:   cfg.CancelURL,
		logger:      logg,
	}

	logg.Info(ctx, "payos client initialized")
	return c, nil
}

// ChecksumKey returns the shared secret used for webhook verification.
func (c *Client) ChecksumKey() string {
	if c == nil {
		return ""
	}
	return c.checksumKey
}

// CreatePaymentLink submits a signed payment-link request and returns the
// hosted checkout data.
func (c *Client) CreatePaymentLink(ctx context.Context, params CreatePaymentLinkParams) (*PaymentLinkData, error) {
	signature := Sign(map[string]string{
		"amount":      strconv.FormatInt(params.Amount, 10),
		"cancelUrl":   c.cancelURL,
		"description": params.Description,
		"orderCode":   strconv.FormatInt(params.OrderCode, 10),
		"returnUrl":   c.returnURL,
	}, c.checksumKey)

	body := map[string]any{
		"orderCode":   params.OrderCode,
		"amount":      params.Amount,
		"description": params.Description,
		"returnUrl":   c.returnURL,
		"cancelUrl":   c.cancelURL,
		"signature":   signature,
	}
	if params.BuyerName != "" {
		body["buyerName"] = params.BuyerName
	}
	if params.BuyerEmail != "" {
		body["buyerEmail"] = params.BuyerEmail
	}
	if len(params.Items) > 0 {
		body["items"] = params.Items
	}

	c.log(ctx, "request", "create_payment_link", map[string]any{
		"order_code": params.OrderCode,
		"amount":     params.Amount,
	})

	var data PaymentLinkData
	if err := c.do(ctx, http.MethodPost, "/v2/payment-requests", body, &data); err != nil {
		c.log(ctx, "error", "create_payment_link", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_payment_link", map[string]any{
		"order_code": data.OrderCode,
		"status":     data.Status,
	})
	return &data, nil
}

// GetPaymentInfo polls the live status and transactions for an order code.
func (c *Client) GetPaymentInfo(ctx context.Context, orderCode int64) (*PaymentInfo, error) {
	path := fmt.Sprintf("/v2/payment-requests/%d", orderCode)
	c.log(ctx, "request", "get_payment_info", map[string]any{"order_code": orderCode})

	var info PaymentInfo
	if err := c.do(ctx, http.MethodGet, path, nil, &info); err != nil {
		c.log(ctx, "error", "get_payment_info", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_payment_info", map[string]any{
		"order_code": info.OrderCode,
		"status":     info.Status,
	})
	return &info, nil
}

// CancelPaymentLink voids an outstanding payment link.
func (c *Client) CancelPaymentLink(ctx context.Context, orderCode int64, reason string) (*PaymentInfo, error) {
	path := fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode)
	body := map[string]any{"cancellationReason": reason}
	c.log(ctx, "request", "cancel_payment_link", map[string]any{"order_code": orderCode})

	var info PaymentInfo
	if err := c.do(ctx, http.MethodPost, path, body, &info); err != nil {
		c.log(ctx, "error", "cancel_payment_link", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "cancel_payment_link", map[string]any{
		"order_code": info.OrderCode,
		"status":     info.Status,
	})
	return &info, nil
}

type apiEnvelope struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", c.clientID)
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read gateway response")
	}

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(domainCodeForStatus(resp.StatusCode),
			fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}
	if envelope.Code != successCode {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("gateway error %s: %s", envelope.Code, envelope.Desc))
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway data")
		}
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("payos %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("payos %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"key", "secret", "token", "email", "account"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
