package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// Order is the settled (or settling) sales document. Dine-in settlements
// reference the session they came from; takeaway orders have no session.
type Order struct {
	ID            int             `gorm:"primary_key" json:"id"`
	OrderNo       string          `gorm:"size:30;uniqueIndex;not null" json:"order_no"`
	StoreId       int             `gorm:"index;not null" json:"store_id"`
	Store         Store           `json:"store"`
	TableId       *int            `json:"table_id"`
	SessionId     *int            `gorm:"index" json:"session_id"`
	MemberId      *int            `gorm:"index" json:"member_id"`
	Member        *Member         `json:"member"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method"`
	PaidAt        *time.Time      `json:"paid_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
	Remark        string          `gorm:"size:255" json:"remark"`
	OperatorName  string          `gorm:"size:50" json:"operator_name"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderId     int             `gorm:"index;not null" json:"order_id"`
	ProductId   int             `gorm:"not null" json:"product_id"`
	Product     Product         `json:"product"`
	ProductName string          `gorm:"size:100;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"line_total"`
	Remark      string          `gorm:"size:255" json:"remark"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// generateOrderNo issues ORD + yyyymmdd + a 6 digit daily sequence.
func generateOrderNo(ctx context.Context, now time.Time) (string, error) {
	seq, err := utils.GetDailySequence(ctx, "order", now, func(ctx context.Context) (int64, error) {
		db := config.GetDB()
		var count int64
		prefix := "ORD" + now.Format("20060102") + "%"
		err := db.WithContext(ctx).Model(&Order{}).
			Where("order_no LIKE ?", prefix).Count(&count).Error
		return count, err
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD%s%06d", now.Format("20060102"), seq), nil
}

type NewOrderItem struct {
	ProductId int    `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Remark    string `json:"remark"`
}

type NewOrder struct {
	StoreId  int            `json:"store_id" binding:"required"`
	MemberId *int           `json:"member_id"`
	Items    []NewOrderItem `json:"items" binding:"required"`
	Remark   string         `json:"remark"`
}

func (input *NewOrder) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Store](ctx, input.StoreId); err != nil {
		return err
	}
	if input.MemberId != nil {
		if err := utils.ValidateResourceId[Member](ctx, *input.MemberId); err != nil {
			return err
		}
	}
	if len(input.Items) == 0 {
		return errors.New("order needs at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return errors.New("item quantity must be positive")
		}
	}
	return nil
}

// CreateOrder opens a pending takeaway order. Prices are snapshotted from
// the catalog now; stock moves later when the order is paid.
func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	orderNo, err := generateOrderNo(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	order := Order{
		OrderNo:      orderNo,
		StoreId:      input.StoreId,
		MemberId:     input.MemberId,
		Status:       OrderStatusPending,
		TotalAmount:  decimal.Zero,
		Remark:       input.Remark,
		OperatorName: utils.GetOperatorName(ctx),
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	total := decimal.Zero
	for _, line := range input.Items {
		var product Product
		if err := tx.First(&product, line.ProductId).Error; err != nil {
			tx.Rollback()
			return nil, ErrNotFound
		}
		if product.IsActive != nil && !*product.IsActive {
			tx.Rollback()
			return nil, errors.New("product is not active")
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		item := OrderItem{
			OrderId:     order.ID,
			ProductId:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
			Remark:      line.Remark,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Items = append(order.Items, item)
		total = total.Add(lineTotal)
	}

	if err := tx.Model(&order).Update("TotalAmount", total).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	order.TotalAmount = total

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type PayOrderInput struct {
	OrderId       int             `json:"order_id" binding:"required"`
	PaidAmount    decimal.Decimal `json:"paid_amount" binding:"required"`
	PaymentMethod PaymentMethod   `json:"payment_method" binding:"required"`
}

// PayOrder takes a pending order through payment to completion in one
// transaction: checks the tendered amount, deducts stock for every line,
// posts the income entry and applies member effects.
func PayOrder(ctx context.Context, input *PayOrderInput) (*Order, error) {

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var order Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").First(&order, input.OrderId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if order.Status != OrderStatusPending {
		tx.Rollback()
		return nil, ErrInvalidState
	}
	if !utils.AmountsMatch(input.PaidAmount, order.TotalAmount) {
		tx.Rollback()
		return nil, ErrAmountMismatch
	}

	var member *Member
	if order.MemberId != nil {
		var m Member
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, *order.MemberId).Error; err != nil {
			tx.Rollback()
			return nil, ErrNotFound
		}
		member = &m
	}
	if input.PaymentMethod == PaymentMethodMemberBalance && member == nil {
		tx.Rollback()
		return nil, ErrInvalidState
	}

	for _, item := range order.Items {
		_, err := adjustInventoryTx(ctx, tx, order.StoreId, item.ProductId,
			-item.Quantity, AdjustReasonSale, fmt.Sprintf("order %s", order.OrderNo))
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now()
	if err := tx.Model(&order).Updates(map[string]interface{}{
		"Status":        OrderStatusCompleted,
		"PaidAmount":    input.PaidAmount,
		"PaymentMethod": input.PaymentMethod,
		"PaidAt":        now,
		"CompletedAt":   now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	order.Status = OrderStatusCompleted
	order.PaidAmount = input.PaidAmount
	order.PaymentMethod = input.PaymentMethod
	order.PaidAt = &now
	order.CompletedAt = &now

	if err := createFinancialRecordTx(ctx, tx, &FinancialRecord{
		StoreId:  order.StoreId,
		Type:     FinancialRecordTypeIncome,
		Category: "takeaway",
		Amount:   input.PaidAmount,
		OrderNo:  order.OrderNo,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}

	if member != nil {
		debitBalance := input.PaymentMethod == PaymentMethodMemberBalance
		if err := applyMemberConsumptionTx(ctx, tx, member, input.PaidAmount, debitBalance, order.OrderNo); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder voids a pending order outright, or refunds a completed one:
// stock goes back, a refund entry is posted and member effects are
// reversed.
func CancelOrder(ctx context.Context, orderId int, reason string) (*Order, error) {

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var order Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").First(&order, orderId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}

	switch order.Status {
	case OrderStatusPending:
		// nothing moved yet, just void it
		if err := tx.Model(&order).Update("Status", OrderStatusCancelled).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Status = OrderStatusCancelled

	case OrderStatusPaid, OrderStatusCompleted:
		// Stock moves only at completion, so a paid order that never
		// completed has nothing to restock.
		if order.Status == OrderStatusCompleted {
			for _, item := range order.Items {
				_, err := adjustInventoryTx(ctx, tx, order.StoreId, item.ProductId,
					item.Quantity, AdjustReasonSaleReversal, fmt.Sprintf("order %s refunded", order.OrderNo))
				if err != nil {
					tx.Rollback()
					return nil, err
				}
			}
		}

		if err := createFinancialRecordTx(ctx, tx, &FinancialRecord{
			StoreId:  order.StoreId,
			Type:     FinancialRecordTypeRefund,
			Category: "refund",
			Amount:   order.PaidAmount,
			OrderNo:  order.OrderNo,
			Remark:   reason,
		}); err != nil {
			tx.Rollback()
			return nil, err
		}

		if order.MemberId != nil {
			var member Member
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&member, *order.MemberId).Error; err != nil {
				tx.Rollback()
				return nil, ErrNotFound
			}
			creditBalance := order.PaymentMethod == PaymentMethodMemberBalance
			if err := reverseMemberConsumptionTx(ctx, tx, &member, order.PaidAmount, creditBalance, order.OrderNo); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		if err := tx.Model(&order).Update("Status", OrderStatusRefunded).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Status = OrderStatusRefunded

	default:
		tx.Rollback()
		return nil, ErrInvalidState
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, id, "Items", "Store")
}

func GetOrderByNo(ctx context.Context, orderNo string) (*Order, error) {
	db := config.GetDB()
	var order Order
	err := db.WithContext(ctx).Preload("Items").Preload("Store").
		Where("order_no = ?", orderNo).First(&order).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &order, nil
}

type OrderFilter struct {
	StoreId  *int
	MemberId *int
	Status   *OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

func GetOrders(ctx context.Context, filter *OrderFilter) ([]*Order, error) {
	db := config.GetDB()
	var results []*Order

	limit := filter.Limit
	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	dbCtx := db.WithContext(ctx).Preload("Items")
	if filter.StoreId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *filter.StoreId)
	}
	if filter.MemberId != nil {
		dbCtx = dbCtx.Where("member_id = ?", *filter.MemberId)
	}
	if filter.Status != nil {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		dbCtx = dbCtx.Where("created_at < ?", *filter.DateTo)
	}
	err := dbCtx.Order("id DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

type OrderStatistics struct {
	OrderCount    int64           `json:"order_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AverageSpend  decimal.Decimal `json:"average_spend"`
	RefundedCount int64           `json:"refunded_count"`
}

// GetOrderStatistics aggregates completed business over a window.
func GetOrderStatistics(ctx context.Context, storeId *int, from time.Time, to time.Time) (*OrderStatistics, error) {
	db := config.GetDB()

	var stats OrderStatistics
	row := struct {
		OrderCount   int64
		TotalRevenue decimal.Decimal
	}{}

	completed := db.WithContext(ctx).Model(&Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status = ?", OrderStatusCompleted)
	if storeId != nil {
		completed = completed.Where("store_id = ?", *storeId)
	}
	err := completed.
		Select("COUNT(*) AS order_count, COALESCE(SUM(paid_amount), 0) AS total_revenue").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	stats.OrderCount = row.OrderCount
	stats.TotalRevenue = row.TotalRevenue
	if stats.OrderCount > 0 {
		stats.AverageSpend = stats.TotalRevenue.Div(decimal.NewFromInt(stats.OrderCount)).Round(2)
	}

	refunded := db.WithContext(ctx).Model(&Order{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status = ?", OrderStatusRefunded)
	if storeId != nil {
		refunded = refunded.Where("store_id = ?", *storeId)
	}
	if err := refunded.Count(&stats.RefundedCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func CountOrders(ctx context.Context, status OrderStatus) (int64, error) {
	return utils.ResourceCountWhere[Order](ctx, "status = ?", status)
}
