package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Code        string          `gorm:"size:30;uniqueIndex;not null" json:"code" binding:"required"`
	Category    string          `gorm:"size:50;index;not null" json:"category" binding:"required"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price" binding:"required"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	Unit        string          `gorm:"size:20;not null" json:"unit" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string          `json:"name" binding:"required"`
	Code        string          `json:"code" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Unit        string          `json:"unit" binding:"required"`
	Description string          `json:"description"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewProduct) validate(ctx context.Context, id int) error {
	// code
	if err := utils.ValidateUnique[Product](ctx, "code", input.Code, id); err != nil {
		return err
	}
	if input.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	product := Product{
		Name:        input.Name,
		Code:        input.Code,
		Category:    input.Category,
		Price:       input.Price,
		CostPrice:   input.CostPrice,
		Unit:        input.Unit,
		Description: input.Description,
		IsActive:    utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&product).Error
	if err != nil {
		if utils.IsMySQLDuplicateEntry(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return &product, nil
}

// UpdateProduct edits the catalog entry. Historical session/order items carry
// their own price snapshot, so a price change never rewrites past sales.
func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Code":        input.Code,
		"Category":    input.Category,
		"Price":       input.Price,
		"CostPrice":   input.CostPrice,
		"Unit":        input.Unit,
		"Description": input.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a catalog entry. Refused once any order or session
// line item references the product; deactivate instead.
func DeleteProduct(ctx context.Context, id int) error {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return err
	}

	refs, err := utils.ResourceCountWhere[OrderItem](ctx, "product_id = ?", id)
	if err != nil {
		return err
	}
	if refs == 0 {
		refs, err = utils.ResourceCountWhere[SessionItem](ctx, "product_id = ?", id)
		if err != nil {
			return err
		}
	}
	if refs > 0 {
		return errors.New("product is referenced by historical sales; deactivate it instead")
	}

	db := config.GetDB()
	return db.WithContext(ctx).Delete(product).Error
}

func DeactivateProduct(ctx context.Context, id int) error {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(product).Update("IsActive", false).Error
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func GetProductByCode(ctx context.Context, code string) (*Product, error) {
	db := config.GetDB()
	var product Product
	if err := db.WithContext(ctx).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, ErrNotFound
	}
	return &product, nil
}

func GetProducts(ctx context.Context, category *string, keyword *string, limit int) ([]*Product, error) {
	db := config.GetDB()
	var results []*Product

	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}

	dbCtx := db.WithContext(ctx).Where("is_active = ?", true)
	if category != nil && len(*category) > 0 {
		dbCtx = dbCtx.Where("category = ?", *category)
	}
	if keyword != nil && len(*keyword) > 0 {
		kw := "%" + *keyword + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR code LIKE ?", kw, kw)
	}
	// db query
	err := dbCtx.Order("code").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
