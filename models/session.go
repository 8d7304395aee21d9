package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableSession is one seating at a table, from open to settle. Items
// accumulate on it and TotalAmount mirrors the sum of its line totals.
type TableSession struct {
	ID           int             `gorm:"primary_key" json:"id"`
	StoreId      int             `gorm:"index;not null" json:"store_id"`
	Store        Store           `json:"store"`
	TableId      int             `gorm:"index;not null" json:"table_id"`
	Table        Table           `json:"table"`
	MemberId     *int            `gorm:"index" json:"member_id"`
	GuestCount   int             `gorm:"not null;default:1" json:"guest_count"`
	Status       SessionStatus   `gorm:"type:varchar(20);not null;default:'in_progress';index" json:"status"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	OrderNo      string          `gorm:"size:30;index" json:"order_no"`
	OpenedAt     time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time      `json:"closed_at"`
	OperatorName string          `gorm:"size:50" json:"operator_name"`
	Items        []SessionItem   `json:"items"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SessionItem is one ordered line. UnitPrice is copied from the catalog
// at add time and never follows later price edits. StockDeducted records
// whether this line actually took stock, so reversal credits exactly
// what was taken.
type SessionItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	SessionId     int             `gorm:"index;not null" json:"session_id"`
	ProductId     int             `gorm:"not null" json:"product_id"`
	Product       Product         `json:"product"`
	ProductName   string          `gorm:"size:100;not null" json:"product_name"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"line_total"`
	StockDeducted *bool           `gorm:"not null;default:false" json:"stock_deducted"`
	Remark        string          `gorm:"size:255" json:"remark"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type OpenTableInput struct {
	TableId    int  `json:"table_id" binding:"required"`
	GuestCount int  `json:"guest_count"`
	MemberId   *int `json:"member_id"`
}

// OpenTable starts a session on a free table and flips the table to
// occupied in the same transaction.
func OpenTable(ctx context.Context, input *OpenTableInput) (*TableSession, error) {

	if input.GuestCount <= 0 {
		input.GuestCount = 1
	}
	if input.MemberId != nil {
		if err := utils.ValidateResourceId[Member](ctx, *input.MemberId); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var table Table
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&table, input.TableId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if table.Status != TableStatusFree {
		tx.Rollback()
		return nil, ErrTableNotFree
	}
	if input.GuestCount > table.Capacity {
		tx.Rollback()
		return nil, fmt.Errorf("guest count %d exceeds table capacity %d", input.GuestCount, table.Capacity)
	}

	session := TableSession{
		StoreId:      table.StoreId,
		TableId:      table.ID,
		MemberId:     input.MemberId,
		GuestCount:   input.GuestCount,
		Status:       SessionStatusInProgress,
		TotalAmount:  decimal.Zero,
		OpenedAt:     time.Now(),
		OperatorName: utils.GetOperatorName(ctx),
	}
	if err := tx.Create(&session).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(&table).Update("Status", TableStatusOccupied).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	session.Table = table
	return &session, nil
}

type NewSessionItem struct {
	SessionId int    `json:"session_id" binding:"required"`
	ProductId int    `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Remark    string `json:"remark"`
}

// AddItemResult reports the added line plus a shortage warning when the
// lenient stock policy let the sale through without stock cover.
type AddItemResult struct {
	Item           *SessionItem    `json:"item"`
	SessionTotal   decimal.Decimal `json:"session_total"`
	StockDeducted  bool            `json:"stock_deducted"`
	StockAvailable int             `json:"stock_available"`
	Warning        string          `json:"warning,omitempty"`
}

// AddSessionItem appends a line to an open session, snapshots the
// catalog price and deducts stock in the same transaction. Under the
// default lenient policy a shortage records the line without taking
// stock and surfaces a warning; under the strict policy it fails with
// ErrInsufficientStock.
func AddSessionItem(ctx context.Context, input *NewSessionItem) (*AddItemResult, error) {

	if input.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var session TableSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, input.SessionId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if session.Status != SessionStatusInProgress {
		tx.Rollback()
		return nil, ErrSessionNotActive
	}

	var product Product
	if err := tx.First(&product, input.ProductId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if product.IsActive != nil && !*product.IsActive {
		tx.Rollback()
		return nil, errors.New("product is not active")
	}

	result := AddItemResult{}

	log, err := adjustInventoryTx(ctx, tx, session.StoreId, product.ID,
		-input.Quantity, AdjustReasonSale, fmt.Sprintf("session %d", session.ID))
	switch {
	case err == nil:
		result.StockDeducted = true
		result.StockAvailable = log.AfterQuantity
	case errors.Is(err, ErrInsufficientStock):
		if config.StrictStockPolicy() {
			tx.Rollback()
			return nil, ErrInsufficientStock
		}
		// lenient: sell anyway, flag the shortage for restock
		inv, invErr := getInventoryTx(tx, session.StoreId, product.ID)
		if invErr == nil {
			result.StockAvailable = inv.Quantity
		}
		result.Warning = fmt.Sprintf("insufficient stock for %s: have %d, need %d",
			product.Name, result.StockAvailable, input.Quantity)
	default:
		tx.Rollback()
		return nil, err
	}

	lineTotal := product.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
	item := SessionItem{
		SessionId:   session.ID,
		ProductId:   product.ID,
		ProductName: product.Name,
		Quantity:    input.Quantity,
		UnitPrice:   product.Price,
		LineTotal:   lineTotal,
		Remark:      input.Remark,
	}
	if result.StockDeducted {
		item.StockDeducted = utils.NewTrue()
	} else {
		item.StockDeducted = utils.NewFalse()
	}
	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	newTotal := session.TotalAmount.Add(lineTotal)
	if err := tx.Model(&session).Update("TotalAmount", newTotal).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	item.Product = product
	result.Item = &item
	result.SessionTotal = newTotal
	return &result, nil
}

func getInventoryTx(tx *gorm.DB, storeId int, productId int) (*Inventory, error) {
	var inv Inventory
	err := tx.Where("store_id = ? AND product_id = ?", storeId, productId).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// RemoveSessionItem deletes a line from an open session, shrinks the
// running total and credits stock back only for lines that actually
// deducted it.
func RemoveSessionItem(ctx context.Context, sessionId int, itemId int) (*TableSession, error) {

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var session TableSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, sessionId).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}
	if session.Status != SessionStatusInProgress {
		tx.Rollback()
		return nil, ErrSessionNotActive
	}

	var item SessionItem
	if err := tx.Where("id = ? AND session_id = ?", itemId, sessionId).
		First(&item).Error; err != nil {
		tx.Rollback()
		return nil, ErrNotFound
	}

	if item.StockDeducted != nil && *item.StockDeducted {
		_, err := adjustInventoryTx(ctx, tx, session.StoreId, item.ProductId,
			item.Quantity, AdjustReasonSaleReversal, fmt.Sprintf("session %d item removed", session.ID))
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	newTotal := session.TotalAmount.Sub(item.LineTotal)
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}
	if err := tx.Model(&session).Update("TotalAmount", newTotal).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	session.TotalAmount = newTotal

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionDurationMinutes reports how long a seating has run, against
// ClosedAt for settled sessions and now for open ones.
func SessionDurationMinutes(session *TableSession, now time.Time) int {
	end := now
	if session.ClosedAt != nil {
		end = *session.ClosedAt
	}
	d := end.Sub(session.OpenedAt)
	if d < 0 {
		return 0
	}
	return int(d.Minutes())
}

func GetSession(ctx context.Context, id int) (*TableSession, error) {
	return utils.FetchModel[TableSession](ctx, id, "Items", "Table", "Store")
}

func GetActiveSessions(ctx context.Context, storeId *int) ([]*TableSession, error) {
	db := config.GetDB()
	var results []*TableSession

	dbCtx := db.WithContext(ctx).Preload("Items").Preload("Table").
		Where("status = ?", SessionStatusInProgress)
	if storeId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	err := dbCtx.Order("opened_at").Limit(config.SearchLimit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetSessions(ctx context.Context, storeId *int, status *SessionStatus, limit int) ([]*TableSession, error) {
	db := config.GetDB()
	var results []*TableSession

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	dbCtx := db.WithContext(ctx).Preload("Items").Preload("Table")
	if storeId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	err := dbCtx.Order("id DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
