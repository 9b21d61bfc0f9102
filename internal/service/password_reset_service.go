package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/telegram"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RateLimiter throttles reset requests per identifying key before any
// OTP record is created or overwritten.
type RateLimiter interface {
	Allow(key string) bool
}

// --- DTOs ---

type RequestResetInput struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyResetInput struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

type CompleteResetInput struct {
	Token       string `json:"token" binding:"required"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type ResetTokenResponse struct {
	Token string `json:"token"`
}

// PasswordResetService implements the OTP issuance/verification flow.
//
// A reset record is PENDING while younger than the 5-minute window; a
// matching code within the window verifies; expiry is detected lazily on
// lookup and deletes the record; a wrong code leaves the record untouched.
// The record survives verification and is deleted only once the password
// is actually changed, so the token cannot be replayed afterwards.
type PasswordResetService interface {
	RequestReset(ctx context.Context, phone string) (*ResetTokenResponse, error)
	VerifyCode(ctx context.Context, token, code string) error
	CompleteReset(ctx context.Context, token, code, newPassword string) error
}

type passwordResetService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	auditRepo repository.AuditRepository
	sender    telegram.Sender
	limiter   RateLimiter
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	auditRepo repository.AuditRepository,
	sender telegram.Sender,
	limiter RateLimiter,
) PasswordResetService {
	return &passwordResetService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		auditRepo: auditRepo,
		sender:    sender,
		limiter:   limiter,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, phone string) (*ResetTokenResponse, error) {
	if s.limiter != nil && !s.limiter.Allow("reset:"+phone) {
		return nil, ErrRateLimited
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.ChatID == nil {
		return nil, ErrNotLinked
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}
	token, err := generateResetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// Overwrites any outstanding code for this phone.
	rec := &model.PasswordReset{
		Phone:     phone,
		Token:     token,
		OTPCode:   code,
		CreatedAt: time.Now(),
	}
	if err := s.resetRepo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store reset record: %w", err)
	}

	msg := fmt.Sprintf("Your password reset code: %s. It is valid for 5 minutes.", code)
	if err := s.sender.Send(ctx, *user.ChatID, msg); err != nil {
		// The stored record stays so a resend attempt can overwrite it.
		return nil, ErrDeliveryFailed
	}

	details, _ := json.Marshal(map[string]interface{}{"phone": phone})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:   &user.ID,
		Action:   model.ActionRequestPasswordReset,
		EntityID: user.ID.String(),
		Details:  string(details),
	})

	return &ResetTokenResponse{Token: token}, nil
}

func (s *passwordResetService) VerifyCode(ctx context.Context, token, code string) error {
	_, err := s.lookup(ctx, token, code)
	return err
}

func (s *passwordResetService) CompleteReset(ctx context.Context, token, code, newPassword string) error {
	rec, err := s.lookup(ctx, token, code)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByPhone(ctx, rec.Phone)
	if err != nil {
		return ErrUserNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID.String(), string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// Single use: the token is dead once the password changed.
	if err := s.resetRepo.DeleteByPhone(ctx, rec.Phone); err != nil {
		return fmt.Errorf("failed to consume reset record: %w", err)
	}

	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:   &user.ID,
		Action:   model.ActionCompletePasswordReset,
		EntityID: user.ID.String(),
	})

	return nil
}

// lookup runs the shared token/expiry/code checks of verify and complete
func (s *passwordResetService) lookup(ctx context.Context, token, code string) (*model.PasswordReset, error) {
	rec, err := s.resetRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if rec.Expired(time.Now()) {
		// Lazy expiry: the record is purged on the access path that finds it stale.
		if err := s.resetRepo.DeleteByPhone(ctx, rec.Phone); err != nil {
			return nil, fmt.Errorf("failed to purge expired record: %w", err)
		}
		return nil, ErrExpired
	}

	if rec.OTPCode != code {
		// No attempt counter: retries are bounded by the window only.
		return nil, ErrInvalidCode
	}

	return rec, nil
}

// generateOTPCode draws a 6-digit zero-padded numeric code
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// generateResetToken draws a 64-character URL-safe opaque handle
func generateResetToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
