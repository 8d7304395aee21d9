package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
)

type Store struct {
	ID           int         `gorm:"primary_key" json:"id"`
	Name         string      `gorm:"size:100;not null" json:"name" binding:"required"`
	Code         string      `gorm:"size:20;uniqueIndex;not null" json:"code" binding:"required"`
	Address      string      `gorm:"size:255" json:"address"`
	Phone        string      `gorm:"size:20" json:"phone"`
	ManagerName  string      `gorm:"size:50" json:"manager_name"`
	ManagerPhone string      `gorm:"size:20" json:"manager_phone"`
	Status       StoreStatus `gorm:"type:enum('active','inactive');default:active;not null;index" json:"status"`
	OpenTime     string      `gorm:"size:10" json:"open_time"`
	CloseTime    string      `gorm:"size:10" json:"close_time"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStore struct {
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code" binding:"required"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	ManagerName  string `json:"manager_name"`
	ManagerPhone string `json:"manager_phone"`
	OpenTime     string `json:"open_time"`
	CloseTime    string `json:"close_time"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewStore) validate(ctx context.Context, id int) error {
	// code
	if err := utils.ValidateUnique[Store](ctx, "code", input.Code, id); err != nil {
		return err
	}
	// phone
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateStore(ctx context.Context, input *NewStore) (*Store, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	store := Store{
		Name:         input.Name,
		Code:         input.Code,
		Address:      input.Address,
		Phone:        input.Phone,
		ManagerName:  input.ManagerName,
		ManagerPhone: input.ManagerPhone,
		Status:       StoreStatusActive,
		OpenTime:     input.OpenTime,
		CloseTime:    input.CloseTime,
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&store).Error
	if err != nil {
		if utils.IsMySQLDuplicateEntry(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return &store, nil
}

func UpdateStore(ctx context.Context, id int, input *NewStore) (*Store, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	store, err := utils.FetchModel[Store](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(store).Updates(map[string]interface{}{
		"Name":         input.Name,
		"Code":         input.Code,
		"Address":      input.Address,
		"Phone":        input.Phone,
		"ManagerName":  input.ManagerName,
		"ManagerPhone": input.ManagerPhone,
		"OpenTime":     input.OpenTime,
		"CloseTime":    input.CloseTime,
	}).Error
	if err != nil {
		return nil, err
	}
	return store, nil
}

// SetStoreStatus toggles a store active/inactive. Stores are never
// hard-deleted; historical orders keep referencing them.
func SetStoreStatus(ctx context.Context, id int, status StoreStatus) (*Store, error) {
	store, err := utils.FetchModel[Store](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(store).Update("Status", status).Error; err != nil {
		return nil, err
	}
	store.Status = status
	return store, nil
}

func GetStore(ctx context.Context, id int) (*Store, error) {
	return utils.FetchModel[Store](ctx, id)
}

func GetStoreByCode(ctx context.Context, code string) (*Store, error) {
	db := config.GetDB()
	var store Store
	if err := db.WithContext(ctx).Where("code = ?", code).First(&store).Error; err != nil {
		return nil, ErrNotFound
	}
	return &store, nil
}

func GetStores(ctx context.Context, status *StoreStatus) ([]*Store, error) {
	db := config.GetDB()
	var results []*Store

	dbCtx := db.WithContext(ctx)
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	// db query
	err := dbCtx.Order("code").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
