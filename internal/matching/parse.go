package matching

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParsedNotification is the structured form of one inbound funds notification.
// Amount is mandatory; every other field is best-effort.
type ParsedNotification struct {
	Amount       int64
	Sender       string
	Content      string
	Balance      int64
	TrackingCode string
	RawText      string
}

var (
	// Amount requires thousands separators or a currency suffix so that bare
	// phone numbers in the text never match.
	amountPattern      = regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d{3})+|\d+)\s*(?:vnd|dong|d\b)`)
	leadingPlusPattern = regexp.MustCompile(`\+\s*(\d{1,3}(?:[.,]\d{3})+|\d+)`)
	senderPattern      = regexp.MustCompile(`(?i)(?:tu|from)\s+(\+?\d{9,12})`)
	phonePattern       = regexp.MustCompile(`\b(0\d{9,10})\b`)
	contentPattern     = regexp.MustCompile(`(?i)(?:nd|noi dung|content)\s*:\s*([^.;]+)`)
	balancePattern     = regexp.MustCompile(`(?i)(?:sd|so du|balance)\s*:\s*(\d{1,3}(?:[.,]\d{3})+|\d+)`)
	trackingPattern    = regexp.MustCompile(`(?i)\b(BCM[A-Z0-9]{8,})\b`)
)

// ParseNotification extracts a transaction record from free-form notification
// text. It returns nil when the text does not look like an incoming-funds
// notification or when no amount can be extracted.
func ParseNotification(raw string) *ParsedNotification {
	text := StripDiacritics(strings.TrimSpace(raw))
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "nhan") &&
		!strings.Contains(lower, "receive") &&
		!strings.HasPrefix(text, "+") {
		return nil
	}

	amount, ok := extractAmount(text)
	if !ok {
		return nil
	}

	parsed := &ParsedNotification{
		Amount:       amount,
		RawText:      raw,
		TrackingCode: ExtractTrackingCode(text),
	}

	if m := senderPattern.FindStringSubmatch(text); m != nil {
		parsed.Sender = m[1]
	} else if m := phonePattern.FindStringSubmatch(text); m != nil {
		parsed.Sender = m[1]
	}

	if m := contentPattern.FindStringSubmatch(text); m != nil {
		parsed.Content = strings.TrimSpace(m[1])
	}

	if m := balancePattern.FindStringSubmatch(text); m != nil {
		if balance, err := parseAmountDigits(m[1]); err == nil {
			parsed.Balance = balance
		}
	}

	return parsed
}

// ExtractTrackingCode returns the first embedded tracking code in text, upper
// cased, or "" when none is present.
func ExtractTrackingCode(text string) string {
	m := trackingPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

func extractAmount(text string) (int64, bool) {
	if m := amountPattern.FindStringSubmatch(text); m != nil {
		if amount, err := parseAmountDigits(m[1]); err == nil {
			return amount, true
		}
	}
	if m := leadingPlusPattern.FindStringSubmatch(text); m != nil {
		if amount, err := parseAmountDigits(m[1]); err == nil {
			return amount, true
		}
	}
	return 0, false
}

func parseAmountDigits(s string) (int64, error) {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(s)
	return strconv.ParseInt(cleaned, 10, 64)
}

var diacriticsTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// StripDiacritics folds Vietnamese text to plain ASCII letters so marker and
// code matching is accent-insensitive.
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacriticsTransformer, s)
	if err != nil {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		}
		return r
	}, out)
}
