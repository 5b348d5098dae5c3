package matching

import (
	"regexp"
	"strings"
)

var brandKeywords = []string{
	"momo",
	"payos",
	"vietcombank",
	"techcombank",
	"vietinbank",
	"bidv",
}

var (
	currencyGlyphPattern = regexp.MustCompile(`(?i)\d\s*(?:₫|vnd|dong|d\b)`)
	senderPrefixPattern  = regexp.MustCompile(`^(?i)(?:momo|\+?84\d{9,10})`)
)

// IsPaymentNotification decides whether an inbound payload looks like a
// payment notification worth parsing: a brand keyword in the sender or body,
// a currency glyph next to a number, or a known sender prefix. Unclassified
// payloads are acknowledged and ignored upstream.
func IsPaymentNotification(sender, body string) bool {
	normalizedSender := strings.ToLower(StripDiacritics(sender))
	normalizedBody := strings.ToLower(StripDiacritics(body))

	for _, keyword := range brandKeywords {
		if strings.Contains(normalizedSender, keyword) || strings.Contains(normalizedBody, keyword) {
			return true
		}
	}
	if strings.Contains(body, "₫") || currencyGlyphPattern.MatchString(normalizedBody) {
		return true
	}
	return senderPrefixPattern.MatchString(strings.TrimSpace(sender))
}
