package models

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	if got, err := ParsePaymentMethod("member_balance"); err != nil || got != PaymentMethodMemberBalance {
		t.Fatalf("ParsePaymentMethod(member_balance) = %q, %v", got, err)
	}
	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Fatalf("expected error for unknown payment method")
	}
	if _, err := ParsePaymentMethod(""); err == nil {
		t.Fatalf("expected error for empty payment method")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if got, err := ParseOrderStatus("refunded"); err != nil || got != OrderStatusRefunded {
		t.Fatalf("ParseOrderStatus(refunded) = %q, %v", got, err)
	}
	if _, err := ParseOrderStatus("Completed"); err == nil {
		t.Fatalf("status values are lowercase; expected error for %q", "Completed")
	}
}

func TestParseTableStatus(t *testing.T) {
	if got, err := ParseTableStatus("cleaning"); err != nil || got != TableStatusCleaning {
		t.Fatalf("ParseTableStatus(cleaning) = %q, %v", got, err)
	}
	if _, err := ParseTableStatus("busy"); err == nil {
		t.Fatalf("expected error for unknown table status")
	}
}
