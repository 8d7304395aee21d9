package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAmountsMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"68", "68", true},
		{"68", "68.005", true},
		{"68", "67.995", true},
		{"68", "68.01", false},
		{"68", "67.99", false},
		{"0", "0", true},
		{"100", "99", false},
	}
	for _, tc := range cases {
		a := decimal.RequireFromString(tc.a)
		b := decimal.RequireFromString(tc.b)
		if got := AmountsMatch(a, b); got != tc.want {
			t.Fatalf("AmountsMatch(%s, %s) = %v; want %v", tc.a, tc.b, got, tc.want)
		}
		// Tolerance is symmetric.
		if got := AmountsMatch(b, a); got != tc.want {
			t.Fatalf("AmountsMatch(%s, %s) = %v; want %v", tc.b, tc.a, got, tc.want)
		}
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if err := ValidatePhoneNumber("13800138000", CountryCode); err != nil {
		t.Fatalf("expected valid mobile number; got %v", err)
	}
	if err := ValidatePhoneNumber("12345", CountryCode); err == nil {
		t.Fatalf("expected error for short number")
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 42
	if got := DereferencePtr(&v); got != 42 {
		t.Fatalf("DereferencePtr = %d; want 42", got)
	}
	var nilPtr *int
	if got := DereferencePtr(nilPtr); got != 0 {
		t.Fatalf("DereferencePtr(nil) = %d; want zero value", got)
	}
}
