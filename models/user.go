package models

import (
	"context"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username" binding:"required"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	FullName  string    `gorm:"size:200" json:"full_name"`
	Role      string    `gorm:"size:20;not null;default:employee" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func CreateUser(ctx context.Context, username, password, fullName, role string) (*User, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := User{
		Username: username,
		Password: hashed,
		FullName: fullName,
		Role:     role,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func Authenticate(ctx context.Context, input *LoginInput) (*User, string, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", utils.NewValidationError("invalid username or password")
		}
		return nil, "", err
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, "", utils.NewValidationError("account is disabled")
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, "", utils.NewValidationError("invalid username or password")
	}
	token, err := utils.JwtGenerate(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}
