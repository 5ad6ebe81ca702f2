package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ServiGo-Platform/service-marketplace/internal/domain/user"
	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name              string     `gorm:"not null;size:200"`
	Phone             string     `gorm:"size:30"`
	Email             string     `gorm:"size:200"`
	Role              string     `gorm:"not null;size:20"`
	ProviderProfileID *uuid.UUID `gorm:"type:uuid;index"`
	BookingCount      int64      `gorm:"not null;default:0"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of user.Repository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by id.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return &user.User{
		ID:                model.ID,
		Name:              model.Name,
		Phone:             model.Phone,
		Email:             model.Email,
		Role:              model.Role,
		ProviderProfileID: model.ProviderProfileID,
		BookingCount:      model.BookingCount,
	}, nil
}

// IncrementBookingCount bumps the user's denormalized booking counter.
func (r *GormUserRepository) IncrementBookingCount(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", id).
		UpdateColumn("booking_count", gorm.Expr("booking_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment user booking count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", id.String())
	}
	return nil
}
