package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/models"
)

func init() {
	register(&Tool{
		Name:        "get_daily_report",
		Description: "Close-of-day business summary for a date (default today).",
		Handler:     getDailyReport,
	})
	register(&Tool{
		Name:        "get_monthly_report",
		Description: "Month rollup of daily summaries.",
		Handler:     getMonthlyReport,
	})
	register(&Tool{
		Name:        "store_comparison",
		Description: "Rank stores by revenue over a date range.",
		Handler:     storeComparison,
	})
	register(&Tool{
		Name:        "top_products",
		Description: "Best-selling products over a date range.",
		Handler:     topProducts,
	})
	register(&Tool{
		Name:        "export_monthly_report",
		Description: "Write the month's daily figures to an xlsx workbook.",
		Handler:     exportMonthlyReport,
	})
	register(&Tool{
		Name:        "export_inventory",
		Description: "Write a store's stock levels to an xlsx workbook.",
		Handler:     exportInventory,
	})
}

func parseDay(s string) (time.Time, error) {
	if len(s) == 0 {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return day, nil
}

type exportMonthlyReportArgs struct {
	StoreId *int   `json:"store_id"`
	Month   string `json:"month" validate:"required"`
	Path    string `json:"path"`
}

func exportMonthlyReport(ctx context.Context, args json.RawMessage) (string, error) {
	var a exportMonthlyReportArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	first, err := time.ParseInLocation("2006-01", a.Month, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid month %q, want YYYY-MM", a.Month)
	}

	data, err := models.ExportMonthlySummaryXlsx(ctx, a.StoreId, first.Year(), first.Month())
	if err != nil {
		return "", err
	}

	path := a.Path
	if len(path) == 0 {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("monthly-summary-%s.xlsx", a.Month))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}
	return fmt.Sprintf("Monthly summary for %s written to %s (%d bytes).", a.Month, path, len(data)), nil
}

type exportInventoryArgs struct {
	StoreId int    `json:"store_id" validate:"required"`
	Path    string `json:"path"`
}

func exportInventory(ctx context.Context, args json.RawMessage) (string, error) {
	var a exportInventoryArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	data, err := models.ExportInventoryXlsx(ctx, a.StoreId)
	if err != nil {
		return "", err
	}

	path := a.Path
	if len(path) == 0 {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("inventory-store-%d.xlsx", a.StoreId))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}
	return fmt.Sprintf("Inventory for store %d written to %s (%d bytes).", a.StoreId, path, len(data)), nil
}

type dailyReportArgs struct {
	StoreId *int   `json:"store_id"`
	Date    string `json:"date"`
}

func getDailyReport(ctx context.Context, args json.RawMessage) (string, error) {
	var a dailyReportArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	day, err := parseDay(a.Date)
	if err != nil {
		return "", err
	}

	s, err := models.GetDailySummary(ctx, a.StoreId, day)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	scope := "all stores"
	if a.StoreId != nil {
		scope = fmt.Sprintf("store %d", *a.StoreId)
	}
	fmt.Fprintf(&b, "Daily summary for %s (%s):\n", s.Date, scope)
	fmt.Fprintf(&b, "- orders: %d, revenue %s, average %s\n",
		s.OrderCount, s.Revenue.StringFixed(2), s.AverageSpend.StringFixed(2))
	fmt.Fprintf(&b, "- refunds %s, expenses %s, recharges %s\n",
		s.RefundAmount.StringFixed(2), s.ExpenseAmount.StringFixed(2), s.RechargeAmount.StringFixed(2))
	fmt.Fprintf(&b, "- net income %s, guests %d, new members %d\n",
		s.NetIncome.StringFixed(2), s.GuestCount, s.NewMembers)
	return b.String(), nil
}

type monthlyReportArgs struct {
	StoreId *int   `json:"store_id"`
	Month   string `json:"month" validate:"required"`
}

func getMonthlyReport(ctx context.Context, args json.RawMessage) (string, error) {
	var a monthlyReportArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}

	first, err := time.ParseInLocation("2006-01", a.Month, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid month %q, want YYYY-MM", a.Month)
	}

	s, err := models.GetMonthlySummary(ctx, a.StoreId, first.Year(), first.Month())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Monthly summary for %s:\n", s.Month)
	fmt.Fprintf(&b, "- orders: %d, revenue %s, refunds %s, net income %s\n",
		s.OrderCount, s.Revenue.StringFixed(2), s.RefundAmount.StringFixed(2), s.NetIncome.StringFixed(2))
	for _, d := range s.Days {
		if d.OrderCount == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d order(s), revenue %s\n", d.Date, d.OrderCount, d.Revenue.StringFixed(2))
	}
	return b.String(), nil
}

type dateRangeArgs struct {
	DateFrom string `json:"date_from" validate:"required"`
	DateTo   string `json:"date_to" validate:"required"`
}

func (a *dateRangeArgs) bounds() (time.Time, time.Time, error) {
	from, err := parseDay(a.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDay(a.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	// inclusive end date
	return from, to.AddDate(0, 0, 1), nil
}

func storeComparison(ctx context.Context, args json.RawMessage) (string, error) {
	var a dateRangeArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	from, to, err := a.bounds()
	if err != nil {
		return "", err
	}

	rows, err := models.GetStoreComparison(ctx, from, to)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "No completed orders in that range.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Store ranking %s to %s:\n", a.DateFrom, a.DateTo)
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s: revenue %s over %d order(s), average %s\n",
			i+1, row.StoreName, row.Revenue.StringFixed(2), row.OrderCount, row.AverageSpend.StringFixed(2))
	}
	return b.String(), nil
}

type topProductsArgs struct {
	StoreId *int `json:"store_id"`
	Limit   int  `json:"limit"`
	dateRangeArgs
}

func topProducts(ctx context.Context, args json.RawMessage) (string, error) {
	var a topProductsArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	from, to, err := a.bounds()
	if err != nil {
		return "", err
	}

	rows, err := models.GetTopProducts(ctx, a.StoreId, from, to, a.Limit)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "No sales in that range.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Best sellers %s to %s:\n", a.DateFrom, a.DateTo)
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s: %d sold, revenue %s\n",
			i+1, row.ProductName, row.QuantitySold, row.Revenue.StringFixed(2))
	}
	return b.String(), nil
}
