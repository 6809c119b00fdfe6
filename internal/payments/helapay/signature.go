package helapay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Signature field names excluded from the signing payload.
const (
	fieldSignature = "signature"
	fieldSign      = "sign"
)

// Sign computes the HelaPay request signature: keys sorted ascending,
// joined as k=v with &, HMAC-SHA256 with the merchant secret, lowercase hex.
// The signature fields themselves are never part of the payload.
func Sign(fields map[string]string, secret string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == fieldSignature || k == fieldSign {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a provided signature against the recomputed one.
// Comparison is case-insensitive on the provided hex and constant-time.
func VerifySignature(fields map[string]string, secret, provided string) bool {
	if provided == "" {
		return false
	}
	want := Sign(fields, secret)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(strings.TrimSpace(provided))))
}
