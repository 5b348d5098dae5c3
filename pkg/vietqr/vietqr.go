// Package vietqr builds hosted VietQR image URLs from interbank routing
// fields, so clients can render a scannable transfer QR without a local
// image pipeline.
package vietqr

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const defaultTemplate = "compact2"

var (
	errBinRequired           = errors.New("vietqr: bank bin is required")
	errAccountNumberRequired = errors.New("vietqr: account number is required")
	errAmountInvalid         = errors.New("vietqr: amount must be positive")
)

// Params describes one transfer QR. AddInfo carries the tracking code and is
// what the payer's bank app prefills as the transfer note.
type Params struct {
	Bin           string
	AccountNumber string
	AccountName   string
	Amount        int64
	AddInfo       string
	Template      string
}

// ImageURL returns the img.vietqr.io URL for the given transfer.
func ImageURL(p Params) (string, error) {
	bin := strings.TrimSpace(p.Bin)
	if bin == "" {
		return "", errBinRequired
	}
	account := strings.TrimSpace(p.AccountNumber)
	if account == "" {
		return "", errAccountNumberRequired
	}
	if p.Amount <= 0 {
		return "", errAmountInvalid
	}

	template := p.Template
	if template == "" {
		template = defaultTemplate
	}

	query := url.Values{}
	query.Set("amount", strconv.FormatInt(p.Amount, 10))
	if p.AddInfo != "" {
		query.Set("addInfo", p.AddInfo)
	}
	if p.AccountName != "" {
		query.Set("accountName", p.AccountName)
	}

	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-%s.png?%s",
		url.PathEscape(bin), url.PathEscape(account), template, query.Encode()), nil
}
