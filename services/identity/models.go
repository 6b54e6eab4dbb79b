package identity

import "time"

// User is one student account, created unverified at first registration and
// flipped to verified exactly once by a successful passcode check.
type User struct {
	ID           uint   `json:"id" gorm:"primarykey"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	StudentID    string `json:"student_id" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Course       string `json:"course"`
	Department   string `json:"department"`
	IsVerified   bool   `json:"is_verified" gorm:"default:false"`
	CreatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// PendingVerification is the single outstanding passcode for an email. The
// unique index on Email is what serializes concurrent first registrations.
type PendingVerification struct {
	ID           uint      `json:"-" gorm:"primarykey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasscodeHash string    `json:"-" gorm:"not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	ResendCount  int       `json:"resend_count" gorm:"default:0"`
	LastIssuedAt time.Time `json:"last_issued_at" gorm:"not null"`
}

func (PendingVerification) TableName() string {
	return "pending_verifications"
}

// Expired reports whether the passcode is unusable at the given instant.
// A code is dead at exactly its expiry time, not one tick later.
func (p *PendingVerification) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
