package helapay

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Gateway statuses (upper-cased) that mean the payment settled.
var successStatuses = map[string]struct{}{
	"SUCCESS":   {},
	"PAID":      {},
	"CAPTURED":  {},
	"COMPLETED": {},
}

// Gateway response codes that mean the payment settled.
var successCodes = map[string]struct{}{
	"00": {},
	"0":  {},
	"2":  {},
}

// Field names the gateway has used for the outcome, oldest contract first.
var (
	statusFieldNames = []string{"status", "payment_status", "transaction_status"}
	codeFieldNames   = []string{"status_code", "payment_status_code", "code"}
)

// NotificationOutcome extracts the status and code values from a notification,
// trying each field name the gateway is known to send. The first non-empty
// value wins.
func NotificationOutcome(params url.Values) (status, code string) {
	for _, name := range statusFieldNames {
		if v := params.Get(name); v != "" {
			status = v
			break
		}
	}
	for _, name := range codeFieldNames {
		if v := params.Get(name); v != "" {
			code = v
			break
		}
	}
	return status, code
}

// IsSuccessNotification reports whether a notification's status/code pair
// indicates a settled payment.
func IsSuccessNotification(status, code string) bool {
	if _, ok := successStatuses[strings.ToUpper(strings.TrimSpace(status))]; ok {
		return true
	}
	_, ok := successCodes[strings.TrimSpace(code)]
	return ok
}

// FormatAmount renders integer cents as the two-decimal string the gateway
// expects, e.g. 135500 -> "1355.00".
func FormatAmount(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).StringFixed(2)
}
