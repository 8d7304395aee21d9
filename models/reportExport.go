package models

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportMonthlySummaryXlsx renders the month's per-day figures as a
// spreadsheet for the back office.
func ExportMonthlySummaryXlsx(ctx context.Context, storeId *int, year int, month time.Month) ([]byte, error) {

	summary, err := GetMonthlySummary(ctx, storeId, year, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Summary"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Orders", "Revenue", "Refunds", "Recharge", "Expenses", "Net", "Guests", "New Members"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for r, day := range summary.Days {
		values := []interface{}{
			day.Date,
			day.OrderCount,
			day.Revenue.InexactFloat64(),
			day.RefundAmount.InexactFloat64(),
			day.RechargeAmount.InexactFloat64(),
			day.ExpenseAmount.InexactFloat64(),
			day.NetIncome.InexactFloat64(),
			day.GuestCount,
			day.NewMembers,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	totalRow := len(summary.Days) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), summary.OrderCount)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), summary.Revenue.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), summary.RefundAmount.InexactFloat64())
	f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), summary.NetIncome.InexactFloat64())

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportInventoryXlsx renders a store's stock levels, flagging rows at
// or below the warning threshold.
func ExportInventoryXlsx(ctx context.Context, storeId int) ([]byte, error) {

	rows, err := GetStoreInventory(ctx, storeId, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Product Code", "Product", "Quantity", "Warning Threshold", "Low"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for r, inv := range rows {
		low := ""
		if inv.Quantity <= inv.WarningThreshold {
			low = "YES"
		}
		values := []interface{}{
			inv.Product.Code,
			inv.Product.Name,
			inv.Quantity,
			inv.WarningThreshold,
			low,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
