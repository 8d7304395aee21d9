package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/teahouse_backend/models"
	"github.com/shopspring/decimal"
)

func init() {
	register(&Tool{
		Name:        "record_expense",
		Description: "Post a manual expense entry (rent, utilities, purchase invoices).",
		Handler:     recordExpense,
	})
	register(&Tool{
		Name:        "financial_records",
		Description: "Show the money journal for a store, newest first.",
		Handler:     financialRecords,
	})
}

type recordExpenseArgs struct {
	StoreId  int             `json:"store_id" validate:"required"`
	Category string          `json:"category" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Remark   string          `json:"remark"`
}

func recordExpense(ctx context.Context, args json.RawMessage) (string, error) {
	var a recordExpenseArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	record, err := models.CreateFinancialRecord(ctx, &models.NewFinancialRecord{
		StoreId:  a.StoreId,
		Type:     models.FinancialRecordTypeExpense,
		Category: a.Category,
		Amount:   a.Amount,
		Remark:   a.Remark,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Expense of %s (%s) recorded for store %d.",
		record.Amount.StringFixed(2), record.Category, record.StoreId), nil
}

type financialRecordsArgs struct {
	StoreId  *int   `json:"store_id"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

func financialRecords(ctx context.Context, args json.RawMessage) (string, error) {
	var a financialRecordsArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	filter := models.FinancialRecordFilter{
		StoreId: a.StoreId,
		Limit:   a.Limit,
	}
	if len(a.Type) > 0 {
		recordType, err := models.ParseFinancialRecordType(a.Type)
		if err != nil {
			return "", err
		}
		filter.Type = &recordType
	}
	if len(a.Category) > 0 {
		filter.Category = &a.Category
	}

	records, err := models.GetFinancialRecords(ctx, &filter)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "No financial records matched.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d record(s), newest first:\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- %s %s/%s: %s",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Type, r.Category,
			r.Amount.StringFixed(2))
		if len(r.OrderNo) > 0 {
			fmt.Fprintf(&b, " (%s)", r.OrderNo)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
