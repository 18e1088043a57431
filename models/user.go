package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Username   string    `gorm:"size:100;uniqueIndex;not null" json:"username" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	Role       UserRole  `gorm:"size:1;default:'S'" json:"role"`
	CanApprove bool      `gorm:"default:false" json:"can_approve"`
	IsActive   *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username   string   `json:"username" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	Password   string   `json:"password" binding:"required"`
	Role       UserRole `json:"role"`
	CanApprove bool     `json:"can_approve"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if err := utils.ValidateUnique[User](ctx, "username", input.Username); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		config.LogError(logger, "user.go", "CreateUser", "hash password", input.Username, err)
		return nil, errors.New("cannot create user")
	}
	role := input.Role
	if role == "" {
		role = UserRoleStaff
	}
	user := User{
		Username:   input.Username,
		Name:       input.Name,
		Password:   string(hashed),
		Role:       role,
		CanApprove: input.CanApprove,
		IsActive:   utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, errors.New("duplicate username")
		}
		config.LogError(logger, "user.go", "CreateUser", "create", input.Username, err)
		return nil, errors.New("cannot create user")
	}
	return &user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()

	var user User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}
