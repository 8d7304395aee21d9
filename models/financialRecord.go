package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinancialRecord is one entry in the money ledger. Sales, recharges,
// refunds and manual expenses all post here; rows are append-only.
type FinancialRecord struct {
	ID           int                 `gorm:"primary_key" json:"id"`
	StoreId      int                 `gorm:"index;not null" json:"store_id"`
	Store        Store               `json:"store"`
	Type         FinancialRecordType `gorm:"type:varchar(20);not null;index" json:"type"`
	Category     string              `gorm:"size:50;index;not null" json:"category"`
	Amount       decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"amount"`
	OrderNo      string              `gorm:"size:30;index" json:"order_no"`
	Remark       string              `gorm:"size:255" json:"remark"`
	OperatorName string              `gorm:"size:50" json:"operator_name"`
	CreatedAt    time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
}

func createFinancialRecordTx(ctx context.Context, tx *gorm.DB, record *FinancialRecord) error {
	if len(record.OperatorName) == 0 {
		record.OperatorName = utils.GetOperatorName(ctx)
	}
	return tx.Create(record).Error
}

type NewFinancialRecord struct {
	StoreId  int                 `json:"store_id" binding:"required"`
	Type     FinancialRecordType `json:"type" binding:"required"`
	Category string              `json:"category" binding:"required"`
	Amount   decimal.Decimal     `json:"amount" binding:"required"`
	Remark   string              `json:"remark"`
}

// CreateFinancialRecord posts a manual entry, typically an expense like
// rent or a purchase invoice.
func CreateFinancialRecord(ctx context.Context, input *NewFinancialRecord) (*FinancialRecord, error) {

	if err := utils.ValidateResourceId[Store](ctx, input.StoreId); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}

	record := FinancialRecord{
		StoreId:      input.StoreId,
		Type:         input.Type,
		Category:     input.Category,
		Amount:       input.Amount,
		Remark:       input.Remark,
		OperatorName: utils.GetOperatorName(ctx),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

type FinancialRecordFilter struct {
	StoreId  *int
	Type     *FinancialRecordType
	Category *string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

func GetFinancialRecords(ctx context.Context, filter *FinancialRecordFilter) ([]*FinancialRecord, error) {
	db := config.GetDB()
	var results []*FinancialRecord

	limit := filter.Limit
	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	dbCtx := db.WithContext(ctx)
	if filter.StoreId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *filter.StoreId)
	}
	if filter.Type != nil {
		dbCtx = dbCtx.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil && len(*filter.Category) > 0 {
		dbCtx = dbCtx.Where("category = ?", *filter.Category)
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
