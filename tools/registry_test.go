package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/teahouse_backend/models"
)

func TestErrorMessageDistinctPerKind(t *testing.T) {
	sentinels := []error{
		models.ErrNotFound,
		models.ErrDuplicateKey,
		models.ErrInsufficientStock,
		models.ErrTableNotFree,
		models.ErrSessionNotActive,
		models.ErrAmountMismatch,
		models.ErrInvalidState,
		models.ErrInsufficientBalance,
	}
	seen := map[string]error{}
	for _, sentinel := range sentinels {
		msg := ErrorMessage(sentinel)
		if msg == "" || msg == sentinel.Error() {
			t.Fatalf("no dedicated message for %v", sentinel)
		}
		if prev, dup := seen[msg]; dup {
			t.Fatalf("%v and %v share the message %q", prev, sentinel, msg)
		}
		seen[msg] = sentinel

		// Wrapped errors map the same way.
		wrapped := fmt.Errorf("add item: %w", sentinel)
		if got := ErrorMessage(wrapped); got != msg {
			t.Fatalf("wrapped %v maps to %q; want %q", sentinel, got, msg)
		}
	}
}

func TestErrorMessagePassesThroughUnknownErrors(t *testing.T) {
	err := errors.New("capacity must be positive")
	if got := ErrorMessage(err); got != "capacity must be positive" {
		t.Fatalf("unknown error rewritten to %q", got)
	}
}

func TestDecodeArgsReportsMissingFields(t *testing.T) {
	var args struct {
		StoreId int    `json:"store_id" validate:"required"`
		TableNo string `json:"table_no" validate:"required"`
	}
	err := decodeArgs(json.RawMessage(`{"store_id": 3}`), &args)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "invalid arguments:") {
		t.Fatalf("unexpected error prefix: %q", msg)
	}
	if !strings.Contains(msg, "tableno") {
		t.Fatalf("missing field not named in %q", msg)
	}
	if strings.Contains(msg, "storeid") {
		t.Fatalf("provided field flagged in %q", msg)
	}
}

func TestDecodeArgsRejectsMalformedJSON(t *testing.T) {
	var args struct {
		Name string `json:"name" validate:"required"`
	}
	if err := decodeArgs(json.RawMessage(`{"name": `), &args); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestRegistryListAndLookup(t *testing.T) {
	listed := List()
	if len(listed) == 0 {
		t.Fatalf("no tools registered")
	}
	names := make([]string, 0, len(listed))
	for _, tool := range listed {
		if tool.Name == "" || tool.Description == "" || tool.Handler == nil {
			t.Fatalf("incomplete tool registration: %+v", tool)
		}
		names = append(names, tool.Name)
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("List() not sorted: %v", names)
	}

	for _, name := range []string{
		"open_table", "confirm_checkout", "adjust_inventory", "get_daily_report",
		"record_expense", "financial_records", "member_transactions",
		"set_warning_threshold", "batch_adjust_inventory", "inventory_summary",
		"export_monthly_report", "export_inventory",
	} {
		if _, ok := Get(name); !ok {
			t.Fatalf("expected %q to be registered", name)
		}
	}
	if _, ok := Get("no_such_tool"); ok {
		t.Fatalf("lookup of unknown tool succeeded")
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	if _, err := Invoke(context.Background(), "no_such_tool", nil); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestInvokeRejectsBadArgumentsBeforeTouchingState(t *testing.T) {
	_, err := Invoke(context.Background(), "create_table", json.RawMessage(`{}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid arguments") {
		t.Fatalf("unexpected error: %v", err)
	}
}
