// Package matching holds the pure primitives that join external payment
// signals to internal payment intents: tracking-code generation, free-text
// notification parsing, and code/amount validation.
package matching

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// GenerateTrackingCode builds a transfer-note code of the form
// prefix + last4(userID) + last4(compact date) + 4 random digits. The code is
// short enough for a 25-character bank transfer description and is not
// guaranteed unique; collisions are resolved at lookup time by amount and
// pending-status filtering.
func GenerateTrackingCode(prefix, userID string, date time.Time) string {
	return fmt.Sprintf("%s%s%s%04d",
		strings.ToUpper(prefix),
		lastAlnum(userID, 4),
		lastAlnum(date.Format("20060102"), 4),
		rand.Intn(10000),
	)
}

func lastAlnum(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	compact := b.String()
	if len(compact) <= n {
		return compact
	}
	return compact[len(compact)-n:]
}
