package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"github.com/shopspring/decimal"
)

// DailySummary is the per-store business summary for one calendar day.
type DailySummary struct {
	Date           string          `json:"date"`
	StoreId        *int            `json:"store_id"`
	OrderCount     int64           `json:"order_count"`
	Revenue        decimal.Decimal `json:"revenue"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
	RechargeAmount decimal.Decimal `json:"recharge_amount"`
	ExpenseAmount  decimal.Decimal `json:"expense_amount"`
	NetIncome      decimal.Decimal `json:"net_income"`
	AverageSpend   decimal.Decimal `json:"average_spend"`
	GuestCount     int64           `json:"guest_count"`
	NewMembers     int64           `json:"new_members"`
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func sumFinancial(ctx context.Context, storeId *int, recordType FinancialRecordType, from time.Time, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()

	row := struct{ Total decimal.Decimal }{}
	dbCtx := db.WithContext(ctx).Model(&FinancialRecord{}).
		Where("type = ? AND created_at >= ? AND created_at < ?", recordType, from, to)
	if storeId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	err := dbCtx.Select("COALESCE(SUM(amount), 0) AS total").Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// GetDailySummary assembles the close-of-day figures from the order and
// financial ledgers. Revenue comes from completed orders; recharge is
// tracked separately because it is deferred income, not sales.
func GetDailySummary(ctx context.Context, storeId *int, day time.Time) (*DailySummary, error) {
	from, to := dayBounds(day)

	stats, err := GetOrderStatistics(ctx, storeId, from, to)
	if err != nil {
		return nil, err
	}

	summary := DailySummary{
		Date:         from.Format("2006-01-02"),
		StoreId:      storeId,
		OrderCount:   stats.OrderCount,
		Revenue:      stats.TotalRevenue,
		AverageSpend: stats.AverageSpend,
	}

	if summary.RefundAmount, err = sumFinancial(ctx, storeId, FinancialRecordTypeRefund, from, to); err != nil {
		return nil, err
	}
	if summary.ExpenseAmount, err = sumFinancial(ctx, storeId, FinancialRecordTypeExpense, from, to); err != nil {
		return nil, err
	}

	db := config.GetDB()

	rechargeRow := struct{ Total decimal.Decimal }{}
	rechargeCtx := db.WithContext(ctx).Model(&FinancialRecord{}).
		Where("type = ? AND category = ? AND created_at >= ? AND created_at < ?",
			FinancialRecordTypeIncome, "recharge", from, to)
	if storeId != nil {
		rechargeCtx = rechargeCtx.Where("store_id = ?", *storeId)
	}
	if err := rechargeCtx.Select("COALESCE(SUM(amount), 0) AS total").Scan(&rechargeRow).Error; err != nil {
		return nil, err
	}
	summary.RechargeAmount = rechargeRow.Total

	summary.NetIncome = summary.Revenue.
		Sub(summary.RefundAmount).
		Sub(summary.ExpenseAmount)

	guestRow := struct{ Total int64 }{}
	guestCtx := db.WithContext(ctx).Model(&TableSession{}).
		Where("status = ? AND closed_at >= ? AND closed_at < ?", SessionStatusCompleted, from, to)
	if storeId != nil {
		guestCtx = guestCtx.Where("store_id = ?", *storeId)
	}
	if err := guestCtx.Select("COALESCE(SUM(guest_count), 0) AS total").Scan(&guestRow).Error; err != nil {
		return nil, err
	}
	summary.GuestCount = guestRow.Total

	if err := db.WithContext(ctx).Model(&Member{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&summary.NewMembers).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// MonthlySummary folds a month into per-day rows plus a total line.
type MonthlySummary struct {
	Month        string          `json:"month"`
	StoreId      *int            `json:"store_id"`
	Days         []*DailySummary `json:"days"`
	OrderCount   int64           `json:"order_count"`
	Revenue      decimal.Decimal `json:"revenue"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	NetIncome    decimal.Decimal `json:"net_income"`
}

func GetMonthlySummary(ctx context.Context, storeId *int, year int, month time.Month) (*MonthlySummary, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	next := first.AddDate(0, 1, 0)

	summary := MonthlySummary{
		Month:   first.Format("2006-01"),
		StoreId: storeId,
	}

	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		ds, err := GetDailySummary(ctx, storeId, day)
		if err != nil {
			return nil, err
		}
		summary.Days = append(summary.Days, ds)
		summary.OrderCount += ds.OrderCount
		summary.Revenue = summary.Revenue.Add(ds.Revenue)
		summary.RefundAmount = summary.RefundAmount.Add(ds.RefundAmount)
		summary.NetIncome = summary.NetIncome.Add(ds.NetIncome)
	}
	return &summary, nil
}

// StoreComparisonRow ranks one store over a reporting window.
type StoreComparisonRow struct {
	StoreId      int             `json:"store_id"`
	StoreName    string          `json:"store_name"`
	OrderCount   int64           `json:"order_count"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageSpend decimal.Decimal `json:"average_spend"`
}

// GetStoreComparison ranks every active store by completed revenue over
// the window.
func GetStoreComparison(ctx context.Context, from time.Time, to time.Time) ([]*StoreComparisonRow, error) {
	db := config.GetDB()
	var results []*StoreComparisonRow

	err := db.WithContext(ctx).Model(&Order{}).
		Select("orders.store_id AS store_id, "+
			"stores.name AS store_name, "+
			"COUNT(*) AS order_count, "+
			"COALESCE(SUM(orders.paid_amount), 0) AS revenue").
		Joins("JOIN stores ON stores.id = orders.store_id").
		Where("orders.status = ? AND orders.created_at >= ? AND orders.created_at < ?",
			OrderStatusCompleted, from, to).
		Group("orders.store_id, stores.name").
		Order("revenue DESC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, row := range results {
		if row.OrderCount > 0 {
			row.AverageSpend = row.Revenue.Div(decimal.NewFromInt(row.OrderCount)).Round(2)
		}
	}
	return results, nil
}

// TopProductRow is one line of the best-seller ranking.
type TopProductRow struct {
	ProductId    int             `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

func GetTopProducts(ctx context.Context, storeId *int, from time.Time, to time.Time, limit int) ([]*TopProductRow, error) {
	db := config.GetDB()
	var results []*TopProductRow

	if limit <= 0 || limit > config.SearchLimit {
		limit = 10
	}

	dbCtx := db.WithContext(ctx).Model(&OrderItem{}).
		Select("order_items.product_id AS product_id, "+
			"order_items.product_name AS product_name, "+
			"COALESCE(SUM(order_items.quantity), 0) AS quantity_sold, "+
			"COALESCE(SUM(order_items.line_total), 0) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.created_at >= ? AND orders.created_at < ?",
			OrderStatusCompleted, from, to)
	if storeId != nil {
		dbCtx = dbCtx.Where("orders.store_id = ?", *storeId)
	}
	err := dbCtx.Group("order_items.product_id, order_items.product_name").
		Order("quantity_sold DESC").Limit(limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
