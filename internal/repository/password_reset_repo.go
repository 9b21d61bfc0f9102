package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PasswordResetRepository keys one-time reset codes by phone
type PasswordResetRepository interface {
	// Upsert atomically replaces any outstanding code for the phone,
	// so at most one live OTP exists per phone at any time.
	Upsert(ctx context.Context, rec *model.PasswordReset) error
	FindByToken(ctx context.Context, token string) (*model.PasswordReset, error)
	DeleteByPhone(ctx context.Context, phone string) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Upsert(ctx context.Context, rec *model.PasswordReset) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "otp_code", "created_at"}),
	}).Create(rec).Error
}

func (r *passwordResetRepository) FindByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	var rec model.PasswordReset
	if err := GetDB(ctx, r.db).First(&rec, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *passwordResetRepository) DeleteByPhone(ctx context.Context, phone string) error {
	return GetDB(ctx, r.db).Where("phone = ?", phone).Delete(&model.PasswordReset{}).Error
}
