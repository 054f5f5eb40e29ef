package domain

import "time"

type User struct {
	ID                        int64      `json:"id"`
	Username                  string     `json:"username"`
	Email                     string     `json:"email"`
	EmailVerified             bool       `json:"email_verified"`
	VerificationCode          string     `json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}
