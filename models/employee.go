package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
)

type Employee struct {
	ID        int              `gorm:"primary_key" json:"id"`
	Name      string           `gorm:"size:50;not null" json:"name" binding:"required"`
	Phone     string           `gorm:"size:20;index;not null" json:"phone" binding:"required"`
	Email     string           `gorm:"size:100" json:"email"`
	Position  EmployeePosition `gorm:"type:enum('manager','cashier','waiter','chef');not null" json:"position" binding:"required"`
	StoreId   int              `gorm:"index;not null" json:"store_id" binding:"required"`
	IsActive  *bool            `gorm:"not null;default:true" json:"is_active"`
	HireDate  *time.Time       `json:"hire_date"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEmployee struct {
	Name     string           `json:"name" binding:"required"`
	Phone    string           `json:"phone" binding:"required"`
	Email    string           `json:"email"`
	Position EmployeePosition `json:"position" binding:"required"`
	StoreId  int              `json:"store_id" binding:"required"`
	HireDate *time.Time       `json:"hire_date"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewEmployee) validate(ctx context.Context, id int) error {
	// store exists
	if err := utils.ValidateResourceId[Store](ctx, input.StoreId); err != nil {
		return err
	}
	// phone
	if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
		return err
	}
	// email
	if len(strings.TrimSpace(input.Email)) > 0 && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	return nil
}

func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	employee := Employee{
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		Position: input.Position,
		StoreId:  input.StoreId,
		IsActive: utils.NewTrue(),
		HireDate: input.HireDate,
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func UpdateEmployee(ctx context.Context, id int, input *NewEmployee) (*Employee, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	employee, err := utils.FetchModel[Employee](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(employee).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Phone":    input.Phone,
		"Email":    input.Email,
		"Position": input.Position,
		"StoreId":  input.StoreId,
		"HireDate": input.HireDate,
	}).Error
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// DeactivateEmployee soft-deletes; employee rows stay for historical records.
func DeactivateEmployee(ctx context.Context, id int) error {
	employee, err := utils.FetchModel[Employee](ctx, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(employee).Update("IsActive", false).Error
}

func GetEmployee(ctx context.Context, id int) (*Employee, error) {
	return utils.FetchModel[Employee](ctx, id)
}

func GetEmployees(ctx context.Context, storeId *int, position *EmployeePosition) ([]*Employee, error) {
	db := config.GetDB()
	var results []*Employee

	dbCtx := db.WithContext(ctx).Where("is_active = ?", true)
	if storeId != nil {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	if position != nil {
		dbCtx = dbCtx.Where("position = ?", *position)
	}
	// db query
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
