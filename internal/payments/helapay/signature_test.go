package helapay

import (
	"net/url"
	"strings"
	"testing"
)

func TestSignExcludesSignatureFields(t *testing.T) {
	t.Parallel()

	base := map[string]string{
		"merchant_id": "M123",
		"order_id":    "abc",
		"amount":      "1355.00",
	}
	withSig := map[string]string{
		"merchant_id": "M123",
		"order_id":    "abc",
		"amount":      "1355.00",
		"signature":   "deadbeef",
		"sign":        "cafebabe",
	}

	if Sign(base, "secret") != Sign(withSig, "secret") {
		t.Fatal("signature fields leaked into the signing payload")
	}
}

func TestSignIsKeyOrderIndependent(t *testing.T) {
	t.Parallel()

	a := map[string]string{"b": "2", "a": "1", "c": "3"}
	b := map[string]string{"c": "3", "a": "1", "b": "2"}
	if Sign(a, "secret") != Sign(b, "secret") {
		t.Fatal("expected deterministic signature regardless of map order")
	}
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	fields := map[string]string{"order_id": "abc", "amount": "10.00", "status": "SUCCESS"}
	sig := Sign(fields, "secret")

	if !VerifySignature(fields, "secret", sig) {
		t.Fatal("expected valid signature to verify")
	}
	if !VerifySignature(fields, "secret", strings.ToUpper(sig)) {
		t.Fatal("expected uppercase hex to verify")
	}
	if VerifySignature(fields, "secret", "") {
		t.Fatal("empty signature must not verify")
	}
	if VerifySignature(fields, "other-secret", sig) {
		t.Fatal("wrong secret must not verify")
	}

	fields["amount"] = "999.00"
	if VerifySignature(fields, "secret", sig) {
		t.Fatal("tampered fields must not verify")
	}
}

func TestIsSuccessNotification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status string
		code   string
		want   bool
	}{
		{"SUCCESS", "", true},
		{"paid", "", true},
		{"Captured", "", true},
		{"COMPLETED", "", true},
		{"", "00", true},
		{"", "0", true},
		{"", "2", true},
		{"PENDING", "1", false},
		{"FAILED", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := IsSuccessNotification(tc.status, tc.code); got != tc.want {
			t.Errorf("IsSuccessNotification(%q, %q) = %v, want %v", tc.status, tc.code, got, tc.want)
		}
	}
}

func TestNotificationOutcome(t *testing.T) {
	t.Parallel()

	params := url.Values{}
	params.Set("payment_status", "PAID")
	params.Set("payment_status_code", "2")

	status, code := NotificationOutcome(params)
	if status != "PAID" || code != "2" {
		t.Fatalf("outcome = %q/%q, want PAID/2", status, code)
	}

	// The oldest field name wins when both are present.
	params.Set("status", "FAILED")
	status, _ = NotificationOutcome(params)
	if status != "FAILED" {
		t.Fatalf("status = %q, want FAILED", status)
	}

	status, code = NotificationOutcome(url.Values{})
	if status != "" || code != "" {
		t.Fatalf("empty params produced %q/%q", status, code)
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		135500: "1355.00",
		999:    "9.99",
		5:      "0.05",
		0:      "0.00",
	}
	for cents, want := range cases {
		if got := FormatAmount(cents); got != want {
			t.Errorf("FormatAmount(%d) = %s, want %s", cents, got, want)
		}
	}
}
