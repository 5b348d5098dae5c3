package matching

import (
	"fmt"
	"math"
	"strings"
)

// AmountTolerance is the relative slack allowed between a parsed transfer
// amount and the expected amount, absorbing bank rounding and fee artifacts.
const AmountTolerance = 0.01

// MatchResult reports whether a parsed notification satisfies an expected
// code/amount pair, with a human-readable reason on failure.
type MatchResult struct {
	Valid  bool
	Reason string
}

// ValidateMatch checks a parsed notification against the expected tracking
// code and amount. The code comparison is case-insensitive; the amount may
// deviate by at most AmountTolerance of the expected value.
func ValidateMatch(parsed *ParsedNotification, expectedCode string, expectedAmount int64) MatchResult {
	if parsed == nil || parsed.TrackingCode == "" {
		return MatchResult{Reason: "no tracking code in notification"}
	}
	if !strings.EqualFold(parsed.TrackingCode, expectedCode) {
		return MatchResult{Reason: fmt.Sprintf("tracking code %s does not match %s", parsed.TrackingCode, expectedCode)}
	}
	if !AmountWithinTolerance(parsed.Amount, expectedAmount) {
		return MatchResult{Reason: fmt.Sprintf("amount %d outside tolerance of expected %d", parsed.Amount, expectedAmount)}
	}
	return MatchResult{Valid: true}
}

// AmountWithinTolerance reports whether got deviates from expected by at most
// AmountTolerance of expected.
func AmountWithinTolerance(got, expected int64) bool {
	return math.Abs(float64(got-expected)) <= AmountTolerance*float64(expected)
}
