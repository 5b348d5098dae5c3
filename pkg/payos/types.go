package payos

import (
	"encoding/json"
	"fmt"
)

// Item is a line item displayed on the hosted checkout page.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// CreatePaymentLinkParams describes a new payment-link request. Description
// carries the tracking code and must fit a bank transfer note (25 chars).
type CreatePaymentLinkParams struct {
	OrderCode   int64
	Amount      int64
	Description string
	BuyerName   string
	BuyerEmail  string
	Items       []Item
}

// PaymentLinkData is the checkout/rendering data returned on link creation:
// the hosted URL, the raw QR payload, and the bank routing fields needed to
// render an interbank QR image.
type PaymentLinkData struct {
	Bin           string `json:"bin"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	OrderCode     int64  `json:"orderCode"`
	Currency      string `json:"currency"`
	PaymentLinkID string `json:"paymentLinkId"`
	Status        string `json:"status"`
	CheckoutURL   string `json:"checkoutUrl"`
	QRCode        string `json:"qrCode"`
}

// Transaction is a single settled transfer reported by the gateway.
type Transaction struct {
	Reference              string  `json:"reference"`
	Amount                 int64   `json:"amount"`
	AccountNumber          string  `json:"accountNumber"`
	Description            string  `json:"description"`
	TransactionDateTime    string  `json:"transactionDateTime"`
	CounterAccountBankID   *string `json:"counterAccountBankId"`
	CounterAccountBankName *string `json:"counterAccountBankName"`
	CounterAccountName     *string `json:"counterAccountName"`
	CounterAccountNumber   *string `json:"counterAccountNumber"`
}

// PaymentInfo is the live state of a gateway order.
type PaymentInfo struct {
	ID                 string        `json:"id"`
	OrderCode          int64         `json:"orderCode"`
	Amount             int64         `json:"amount"`
	AmountPaid         int64         `json:"amountPaid"`
	AmountRemaining    int64         `json:"amountRemaining"`
	Status             string        `json:"status"`
	CreatedAt          string        `json:"createdAt"`
	Transactions       []Transaction `json:"transactions"`
	CanceledAt         *string       `json:"canceledAt"`
	CancellationReason *string       `json:"cancellationReason"`
}

// WebhookData is the typed payload of a gateway webhook delivery.
type WebhookData struct {
	OrderCode            int64   `json:"orderCode"`
	Amount               int64   `json:"amount"`
	Description          string  `json:"description"`
	AccountNumber        string  `json:"accountNumber"`
	Reference            string  `json:"reference"`
	TransactionDateTime  string  `json:"transactionDateTime"`
	Currency             string  `json:"currency"`
	PaymentLinkID        string  `json:"paymentLinkId"`
	Code                 string  `json:"code"`
	Desc                 string  `json:"desc"`
	CounterAccountBankID *string `json:"counterAccountBankId"`
	CounterAccountName   *string `json:"counterAccountName"`
	CounterAccountNumber *string `json:"counterAccountNumber"`
}

// WebhookPayload is a full webhook delivery. The raw data map is kept
// alongside the typed fields so signature verification sees exactly what the
// gateway sent.
type WebhookPayload struct {
	Code      string      `json:"code"`
	Desc      string      `json:"desc"`
	Success   bool        `json:"success"`
	Data      WebhookData `json:"data"`
	Signature string      `json:"signature"`

	raw map[string]any
}

// ParseWebhook decodes a webhook body, retaining the raw data map for
// signature verification.
func ParseWebhook(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding webhook body: %w", err)
	}

	var shadow struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &shadow); err != nil {
		return nil, fmt.Errorf("decoding webhook data: %w", err)
	}
	payload.raw = shadow.Data
	return &payload, nil
}

// Verify checks the payload signature against the checksum key, failing
// closed on any anomaly.
func (p *WebhookPayload) Verify(checksumKey string) bool {
	if p == nil {
		return false
	}
	return VerifyWebhookSignature(p.raw, p.Signature, checksumKey)
}
