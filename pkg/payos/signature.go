package payos

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// webhookSignatureKeys is the full set of fields the gateway signs on webhook
// delivery, in the fixed (alphabetical) order it uses. Fields absent from a
// payload contribute an empty string.
var webhookSignatureKeys = []string{
	"accountNumber",
	"amount",
	"code",
	"counterAccountBankId",
	"counterAccountBankName",
	"counterAccountName",
	"counterAccountNumber",
	"currency",
	"desc",
	"description",
	"orderCode",
	"paymentLinkId",
	"reference",
	"transactionDateTime",
	"virtualAccountName",
	"virtualAccountNumber",
}

// Sign computes the hex HMAC-SHA256 of the key=value pairs in data, joined
// with '&' in ascending key order.
func Sign(data map[string]string, checksumKey string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+data[k])
	}

	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature recomputes the webhook HMAC over the enumerated
// field set and compares it to the supplied signature. Any anomaly (missing
// signature, empty payload) fails closed.
func VerifyWebhookSignature(data map[string]any, signature, checksumKey string) bool {
	if len(data) == 0 || signature == "" || checksumKey == "" {
		return false
	}

	fields := make(map[string]string, len(webhookSignatureKeys))
	for _, key := range webhookSignatureKeys {
		fields[key] = stringifySignatureValue(data[key])
	}

	expected := Sign(fields, checksumKey)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func stringifySignatureValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		if v == "null" || v == "undefined" {
			return ""
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
