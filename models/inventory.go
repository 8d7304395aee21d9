package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Inventory holds the on-hand quantity for one product at one store.
// The quantity column is only ever written through adjustInventoryTx so
// that every change leaves a matching log row.
type Inventory struct {
	ID               int       `gorm:"primary_key" json:"id"`
	StoreId          int       `gorm:"not null;uniqueIndex:idx_store_product" json:"store_id"`
	Store            Store     `json:"store"`
	ProductId        int       `gorm:"not null;uniqueIndex:idx_store_product" json:"product_id"`
	Product          Product   `json:"product"`
	Quantity         int       `gorm:"not null;default:0" json:"quantity"`
	WarningThreshold int       `gorm:"not null;default:10" json:"warning_threshold"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InventoryLog is the append-only stock ledger. BeforeQuantity and
// AfterQuantity snapshot the row around the change so the chain can be
// audited and replayed.
type InventoryLog struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	StoreId        int                 `gorm:"index;not null" json:"store_id"`
	ProductId      int                 `gorm:"index;not null" json:"product_id"`
	Product        Product             `json:"product"`
	ChangeType     InventoryChangeType `gorm:"type:varchar(10);not null" json:"change_type"`
	Quantity       int                 `gorm:"not null" json:"quantity"`
	BeforeQuantity int                 `gorm:"not null" json:"before_quantity"`
	AfterQuantity  int                 `gorm:"not null" json:"after_quantity"`
	Reason         string              `gorm:"size:50;index;not null" json:"reason"`
	Remark         string              `gorm:"size:255" json:"remark"`
	OperatorName   string              `gorm:"size:50" json:"operator_name"`
	CreatedAt      time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
}

type InventoryAdjustment struct {
	StoreId   int    `json:"store_id" binding:"required"`
	ProductId int    `json:"product_id" binding:"required"`
	Delta     int    `json:"delta" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
	Remark    string `json:"remark"`
}

// adjustInventoryTx applies one signed stock movement inside the caller's
// transaction. The locked row is created lazily, but only once a movement
// actually lands; a movement that would drive the quantity negative fails
// closed with ErrInsufficientStock and leaves no trace, not even the row.
// Exactly one log row is written per successful call.
func adjustInventoryTx(ctx context.Context, tx *gorm.DB, storeId int, productId int, delta int, reason string, remark string) (*InventoryLog, error) {

	if delta == 0 {
		return nil, errors.New("delta cannot be zero")
	}

	var inv Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND product_id = ?", storeId, productId).
		First(&inv).Error
	missing := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !missing {
		return nil, err
	}

	before := 0
	if !missing {
		before = inv.Quantity
	}
	after := before + delta
	if after < 0 {
		return nil, ErrInsufficientStock
	}

	if missing {
		inv = Inventory{StoreId: storeId, ProductId: productId, Quantity: after}
		if err := tx.Create(&inv).Error; err != nil {
			return nil, err
		}
	} else if err := tx.Model(&inv).Update("Quantity", after).Error; err != nil {
		return nil, err
	}

	changeType := InventoryChangeTypeIn
	if delta < 0 {
		changeType = InventoryChangeTypeOut
	}
	logQty := delta
	if logQty < 0 {
		logQty = -logQty
	}

	log := InventoryLog{
		StoreId:        storeId,
		ProductId:      productId,
		ChangeType:     changeType,
		Quantity:       logQty,
		BeforeQuantity: before,
		AfterQuantity:  after,
		Reason:         reason,
		Remark:         remark,
		OperatorName:   utils.GetOperatorName(ctx),
	}
	if err := tx.Create(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// AdjustInventory applies one stock movement in its own transaction.
func AdjustInventory(ctx context.Context, input *InventoryAdjustment) (*InventoryLog, error) {

	if err := utils.ValidateResourceId[Store](ctx, input.StoreId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
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

	log, err := adjustInventoryTx(ctx, tx, input.StoreId, input.ProductId, input.Delta, input.Reason, input.Remark)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return log, nil
}

// BatchAdjustInventory applies a set of movements atomically. One
// insufficient line rolls back the whole batch.
func BatchAdjustInventory(ctx context.Context, inputs []*InventoryAdjustment) ([]*InventoryLog, error) {

	if len(inputs) == 0 {
		return nil, errors.New("no adjustments given")
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	logs := make([]*InventoryLog, 0, len(inputs))
	for _, input := range inputs {
		log, err := adjustInventoryTx(ctx, tx, input.StoreId, input.ProductId, input.Delta, input.Reason, input.Remark)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func GetInventory(ctx context.Context, storeId int, productId int) (*Inventory, error) {
	db := config.GetDB()
	var inv Inventory
	err := db.WithContext(ctx).Preload("Product").
		Where("store_id = ? AND product_id = ?", storeId, productId).
		First(&inv).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func GetStoreInventory(ctx context.Context, storeId int, limit int) ([]*Inventory, error) {
	db := config.GetDB()
	var results []*Inventory

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}
	err := db.WithContext(ctx).Preload("Product").
		Where("store_id = ?", storeId).
		Order("product_id").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetLowStockItems lists rows at or below their warning threshold,
// scoped to one store when storeId is non-nil.
func GetLowStockItems(ctx context.Context, storeId *int) ([]*Inventory, error) {
	db := config.GetDB()
	var results []*Inventory

	dbCtx := db.WithContext(ctx).Preload("Product").Preload("Store").
		Where("quantity <= warning_threshold")
	if storeId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	err := dbCtx.Order("quantity").Limit(config.SearchLimit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func SetWarningThreshold(ctx context.Context, storeId int, productId int, threshold int) (*Inventory, error) {
	if threshold < 0 {
		return nil, errors.New("threshold cannot be negative")
	}
	inv, err := GetInventory(ctx, storeId, productId)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(inv).Update("WarningThreshold", threshold).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

type InventoryLogFilter struct {
	StoreId   *int
	ProductId *int
	Reason    *string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
}

func GetInventoryLogs(ctx context.Context, filter *InventoryLogFilter) ([]*InventoryLog, error) {
	db := config.GetDB()
	var results []*InventoryLog

	limit := filter.Limit
	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	dbCtx := db.WithContext(ctx).Preload("Product")
	if filter.StoreId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *filter.StoreId)
	}
	if filter.ProductId != nil {
		dbCtx = dbCtx.Where("product_id = ?", *filter.ProductId)
	}
	if filter.Reason != nil && len(*filter.Reason) > 0 {
		dbCtx = dbCtx.Where("reason = ?", *filter.Reason)
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

type InventorySummaryRow struct {
	StoreId        int    `json:"store_id"`
	StoreName      string `json:"store_name"`
	ProductCount   int    `json:"product_count"`
	TotalQuantity  int    `json:"total_quantity"`
	LowStockCount  int    `json:"low_stock_count"`
	ZeroStockCount int    `json:"zero_stock_count"`
}

// GetInventorySummary aggregates per-store stock posture.
func GetInventorySummary(ctx context.Context, storeId *int) ([]*InventorySummaryRow, error) {
	db := config.GetDB()
	var results []*InventorySummaryRow

	dbCtx := db.WithContext(ctx).Model(&Inventory{}).
		Select("inventories.store_id AS store_id, " +
			"stores.name AS store_name, " +
			"COUNT(*) AS product_count, " +
			"COALESCE(SUM(inventories.quantity), 0) AS total_quantity, " +
			"SUM(CASE WHEN inventories.quantity <= inventories.warning_threshold THEN 1 ELSE 0 END) AS low_stock_count, " +
			"SUM(CASE WHEN inventories.quantity = 0 THEN 1 ELSE 0 END) AS zero_stock_count").
		Joins("JOIN stores ON stores.id = inventories.store_id")
	if storeId != nil {
		dbCtx = dbCtx.Where("inventories.store_id = ?", *storeId)
	}
	err := dbCtx.Group("inventories.store_id, stores.name").
		Order("inventories.store_id").Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
