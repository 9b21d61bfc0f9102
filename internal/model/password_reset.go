package model

import "time"

// OTPTTL bounds how long a password reset code stays valid
const OTPTTL = 5 * time.Minute

// PasswordReset holds the one-time code for a phone-initiated password reset.
// Exactly one live row per phone: a new request overwrites the previous one.
// The row is deleted once the password is actually changed or expiry is detected.
type PasswordReset struct {
	Phone     string    `gorm:"type:varchar(20);primaryKey" json:"phone"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	OTPCode   string    `gorm:"column:otp_code;type:char(6);not null" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName pins the table name the migrations created for reset tokens
func (PasswordReset) TableName() string {
	return "password_reset_tokens"
}

// Expired reports whether the code's validity window has elapsed
func (p PasswordReset) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) >= OTPTTL
}
