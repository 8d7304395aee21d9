package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
)

type Table struct {
	ID        int         `gorm:"primary_key" json:"id"`
	StoreId   int         `gorm:"not null;uniqueIndex:idx_store_table_no" json:"store_id"`
	Store     Store       `json:"store"`
	TableNo   string      `gorm:"size:20;not null;uniqueIndex:idx_store_table_no" json:"table_no"`
	Capacity  int         `gorm:"not null;default:4" json:"capacity"`
	Status    TableStatus `gorm:"type:varchar(20);not null;default:'free'" json:"status"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Table) TableName() string {
	return "tables"
}

type NewTable struct {
	StoreId  int    `json:"store_id" binding:"required"`
	TableNo  string `json:"table_no" binding:"required"`
	Capacity int    `json:"capacity" binding:"required"`
}

func (input *NewTable) validate(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[Store](ctx, input.StoreId); err != nil {
		return err
	}
	if input.Capacity <= 0 {
		return errors.New("capacity must be positive")
	}

	// table numbers repeat across stores but not within one
	count, err := utils.ResourceCountWhere[Table](ctx,
		"store_id = ? AND table_no = ? AND id != ?", input.StoreId, input.TableNo, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateKey
	}
	return nil
}

func CreateTable(ctx context.Context, input *NewTable) (*Table, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	table := Table{
		StoreId:  input.StoreId,
		TableNo:  input.TableNo,
		Capacity: input.Capacity,
		Status:   TableStatusFree,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&table).Error
	if err != nil {
		if utils.IsMySQLDuplicateEntry(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return &table, nil
}

func UpdateTable(ctx context.Context, id int, input *NewTable) (*Table, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	table, err := utils.FetchModel[Table](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(table).Updates(map[string]interface{}{
		"TableNo":  input.TableNo,
		"Capacity": input.Capacity,
	}).Error
	if err != nil {
		return nil, err
	}
	return table, nil
}

// SetTableStatus covers manual transitions like reserved and cleaning.
// Occupied and free are normally driven by the session lifecycle.
func SetTableStatus(ctx context.Context, id int, status TableStatus) (*Table, error) {
	table, err := utils.FetchModel[Table](ctx, id)
	if err != nil {
		return nil, err
	}

	if table.Status == TableStatusOccupied && status != TableStatusFree {
		return nil, ErrInvalidState
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(table).Update("Status", status).Error; err != nil {
		return nil, err
	}
	table.Status = status
	return table, nil
}

func DeleteTable(ctx context.Context, id int) error {
	table, err := utils.FetchModel[Table](ctx, id)
	if err != nil {
		return err
	}
	if table.Status == TableStatusOccupied {
		return ErrInvalidState
	}

	refs, err := utils.ResourceCountWhere[TableSession](ctx, "table_id = ?", id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return errors.New("table has session history and cannot be deleted")
	}

	db := config.GetDB()
	return db.WithContext(ctx).Delete(table).Error
}

func GetTable(ctx context.Context, id int) (*Table, error) {
	return utils.FetchModel[Table](ctx, id)
}

func GetTables(ctx context.Context, storeId int, status *TableStatus) ([]*Table, error) {
	db := config.GetDB()
	var results []*Table

	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	err := dbCtx.Order("table_no").Limit(config.SearchLimit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
