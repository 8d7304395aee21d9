package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/teahouse_backend/config"
	"bitbucket.org/mmdatafocus/teahouse_backend/utils"
	"gorm.io/gorm"
)

// User is a back-office console account, not a floor employee.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username" binding:"required"`
	Name      string    `gorm:"size:100" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsAdmin   *bool     `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertUser creates or updates a console account with the given credentials.
// Used by cmd/seed-admin.
func UpsertUser(ctx context.Context, username, name, password string, isAdmin bool) (*User, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var user User
	err = db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = User{
			Username: username,
			Name:     name,
			Password: string(hashed),
			IsAdmin:  &isAdmin,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	if err := db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"Name":     name,
		"Password": string(hashed),
		"IsAdmin":  isAdmin,
	}).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

// Login checks credentials and returns a signed JWT for the console.
func Login(ctx context.Context, username, password string) (string, *User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return "", nil, errors.New("invalid username or password")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return "", nil, errors.New("invalid username or password")
	}

	role := "User"
	if user.IsAdmin != nil && *user.IsAdmin {
		role = "Admin"
	}
	token, err := utils.JwtGenerate(user.ID, role)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}
