package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"backend/internal/model"
	"backend/internal/repository"
)

// recordingSender captures outgoing Telegram messages instead of hitting the API
type recordingSender struct {
	chatIDs  []int64
	messages []string
	fail     bool
}

func (s *recordingSender) Send(_ context.Context, chatID int64, text string) error {
	if s.fail {
		return errors.New("telegram unreachable")
	}
	s.chatIDs = append(s.chatIDs, chatID)
	s.messages = append(s.messages, text)
	return nil
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

type resetFixture struct {
	db     *gorm.DB
	svc    PasswordResetService
	sender *recordingSender
	user   model.User
}

func newResetFixture(t *testing.T, limiter RateLimiter) *resetFixture {
	t.Helper()
	db := newTestDB(t)

	chatID := int64(880042)
	user := mustCreateUser(t, db, "Linked User", model.RoleFRP, nil)
	if err := db.Model(&model.User{}).Where("id = ?", user.ID).Update("chat_id", chatID).Error; err != nil {
		t.Fatalf("link telegram chat: %v", err)
	}
	user.ChatID = &chatID

	sender := &recordingSender{}
	svc := NewPasswordResetService(
		repository.NewUserRepository(db),
		repository.NewPasswordResetRepository(db),
		repository.NewAuditRepository(db),
		sender,
		limiter,
	)

	return &resetFixture{db: db, svc: svc, sender: sender, user: user}
}

// storedReset loads the single reset record for the fixture user
func (f *resetFixture) storedReset(t *testing.T) *model.PasswordReset {
	t.Helper()
	var rec model.PasswordReset
	if err := f.db.First(&rec, "phone = ?", f.user.Phone).Error; err != nil {
		t.Fatalf("load reset record: %v", err)
	}
	return &rec
}

// ageReset rewrites created_at so expiry paths can be exercised without sleeping
func (f *resetFixture) ageReset(t *testing.T, age time.Duration) {
	t.Helper()
	if err := f.db.Model(&model.PasswordReset{}).
		Where("phone = ?", f.user.Phone).
		Update("created_at", time.Now().Add(-age)).Error; err != nil {
		t.Fatalf("age reset record: %v", err)
	}
}

func TestPasswordReset_RequestDeliversCode(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})

	res, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(res.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(res.Token))
	}

	if len(f.sender.chatIDs) != 1 || f.sender.chatIDs[0] != *f.user.ChatID {
		t.Fatalf("message sent to %v, want [%d]", f.sender.chatIDs, *f.user.ChatID)
	}

	rec := f.storedReset(t)
	if rec.Token != res.Token {
		t.Error("stored token differs from the returned one")
	}
	if len(rec.OTPCode) != 6 {
		t.Errorf("code length = %d, want 6", len(rec.OTPCode))
	}
	for _, r := range rec.OTPCode {
		if r < '0' || r > '9' {
			t.Fatalf("code %q has non-digit characters", rec.OTPCode)
		}
	}
}

func TestPasswordReset_UnknownPhone(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})

	_, err := f.svc.RequestReset(context.Background(), "998000000000")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestPasswordReset_UnlinkedAccount(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})
	unlinked := mustCreateUser(t, f.db, "No Telegram", model.RoleUser, nil)

	_, err := f.svc.RequestReset(context.Background(), unlinked.Phone)
	if !errors.Is(err, ErrNotLinked) {
		t.Fatalf("err = %v, want ErrNotLinked", err)
	}
}

func TestPasswordReset_RateLimited(t *testing.T) {
	f := newResetFixture(t, denyAllLimiter{})

	_, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if len(f.sender.messages) != 0 {
		t.Error("rate-limited request must not send anything")
	}
}

func TestPasswordReset_ReissueOverwrites(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})

	first, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	firstCode := f.storedReset(t).OTPCode

	second, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if first.Token == second.Token {
		t.Error("reissue kept the old token")
	}

	// Only one record per phone, and the first token is dead.
	var count int64
	if err := f.db.Model(&model.PasswordReset{}).Count(&count).Error; err != nil {
		t.Fatalf("count reset records: %v", err)
	}
	if count != 1 {
		t.Fatalf("found %d reset records, want 1", count)
	}

	if err := f.svc.VerifyCode(context.Background(), first.Token, firstCode); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("old token verify: err = %v, want ErrInvalidToken", err)
	}
	if err := f.svc.VerifyCode(context.Background(), second.Token, f.storedReset(t).OTPCode); err != nil {
		t.Fatalf("new token verify: %v", err)
	}
}

func TestPasswordReset_VerifyMatrix(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})

	res, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	code := f.storedReset(t).OTPCode

	if err := f.svc.VerifyCode(context.Background(), "no-such-token", code); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unknown token: err = %v, want ErrInvalidToken", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := f.svc.VerifyCode(context.Background(), res.Token, wrong); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("wrong code: err = %v, want ErrInvalidCode", err)
	}

	// A wrong code leaves the record usable.
	if err := f.svc.VerifyCode(context.Background(), res.Token, code); err != nil {
		t.Errorf("correct code after failed attempt: %v", err)
	}

	// Verification does not consume the record.
	if err := f.svc.VerifyCode(context.Background(), res.Token, code); err != nil {
		t.Errorf("repeated verify: %v", err)
	}
}

func TestPasswordReset_ExpiryWindow(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})

	res, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	code := f.storedReset(t).OTPCode

	// Just inside the window still verifies.
	f.ageReset(t, model.OTPTTL-time.Second)
	if err := f.svc.VerifyCode(context.Background(), res.Token, code); err != nil {
		t.Fatalf("verify at 4:59: %v", err)
	}

	// Just past the window expires, and the stale record is purged.
	f.ageReset(t, model.OTPTTL+time.Second)
	if err := f.svc.VerifyCode(context.Background(), res.Token, code); !errors.Is(err, ErrExpired) {
		t.Fatalf("verify at 5:01: err = %v, want ErrExpired", err)
	}

	var count int64
	if err := f.db.Model(&model.PasswordReset{}).Count(&count).Error; err != nil {
		t.Fatalf("count reset records: %v", err)
	}
	if count != 0 {
		t.Error("expired record should be deleted on detection")
	}

	// After purge the token reads as unknown, not expired.
	if err := f.svc.VerifyCode(context.Background(), res.Token, code); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("verify after purge: err = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordReset_CompleteConsumesToken(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})

	res, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	code := f.storedReset(t).OTPCode

	if err := f.svc.CompleteReset(context.Background(), res.Token, code, "new-secret-1"); err != nil {
		t.Fatalf("complete reset: %v", err)
	}

	// Password actually changed.
	var updated model.User
	if err := f.db.First(&updated, "id = ?", f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if updated.Password == f.user.Password {
		t.Error("password hash did not change")
	}

	// Single use: the same token/code pair is dead now.
	if err := f.svc.CompleteReset(context.Background(), res.Token, code, "another-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token replay: err = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordReset_DeliveryFailureKeepsRecord(t *testing.T) {
	f := newResetFixture(t, allowAllLimiter{})
	f.sender.fail = true

	_, err := f.svc.RequestReset(context.Background(), f.user.Phone)
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}

	// The record stays so the next attempt overwrites it instead of leaking codes.
	var count int64
	if err := f.db.Model(&model.PasswordReset{}).Count(&count).Error; err != nil {
		t.Fatalf("count reset records: %v", err)
	}
	if count != 1 {
		t.Fatalf("found %d reset records after delivery failure, want 1", count)
	}

	f.sender.fail = false
	if _, err := f.svc.RequestReset(context.Background(), f.user.Phone); err != nil {
		t.Fatalf("retry after delivery failure: %v", err)
	}
}
