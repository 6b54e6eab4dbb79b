package identity

import (
	"errors"
	"fmt"

	"github.com/unigrievance/gateway/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPendingNotFound = errors.New("no pending verification found")
	// ErrConflict signals that a concurrent writer created the row first.
	// Callers should treat it as transient and let the client retry.
	ErrConflict = errors.New("conflicting write for the same identity")
)

// Store owns the User and PendingVerification tables. Nothing else in the
// gateway touches them directly.
type Store struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewStore(db *gorm.DB, logger *logging.Service) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// FindByLogin looks a user up by exact email or student id match. Emails are
// stored lowercased, so callers must lowercase email input before calling.
func (s *Store) FindByLogin(loginID string) (*User, error) {
	var user User
	err := s.db.Where("email = ? OR student_id = ?", loginID, loginID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// FindByEmailOrStudentID returns the user owning either identifier. Used by
// registration, where email and student id may belong to different rows and
// either collision matters.
func (s *Store) FindByEmailOrStudentID(email, studentID string) (*User, error) {
	var user User
	err := s.db.Where("email = ? OR student_id = ?", email, studentID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func (s *Store) FindByEmail(email string) (*User, error) {
	var user User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new unverified user. A duplicate email or student id
// surfaces as ErrConflict.
func (s *Store) CreateUser(user *User) error {
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUnverified overwrites the mutable fields of an unverified user:
// metadata and credential hash. Verified rows must never reach this method.
func (s *Store) UpdateUnverified(user *User) error {
	err := s.db.Model(&User{}).
		Where("id = ? AND is_verified = ?", user.ID, false).
		Updates(map[string]any{
			"password_hash": user.PasswordHash,
			"course":        user.Course,
			"department":    user.Department,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUnverified removes a user row only while it is still unverified.
// Registration uses it to roll back a brand-new account whose passcode email
// could not be dispatched.
func (s *Store) DeleteUnverified(email string) error {
	err := s.db.Where("email = ? AND is_verified = ?", email, false).Delete(&User{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete unverified user: %w", err)
	}
	return nil
}

func (s *Store) FindPending(email string) (*PendingVerification, error) {
	var pending PendingVerification
	err := s.db.Where("email = ?", email).First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("failed to look up pending verification: %w", err)
	}
	return &pending, nil
}

// CreatePending inserts a fresh passcode record. The unique index on email
// rejects the second of two racing first registrations with ErrConflict.
func (s *Store) CreatePending(pending *PendingVerification) error {
	if err := s.db.Create(pending).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create pending verification: %w", err)
	}
	return nil
}

// UpdatePending overwrites the passcode fields of an existing record in place.
func (s *Store) UpdatePending(pending *PendingVerification) error {
	if err := s.db.Save(pending).Error; err != nil {
		return fmt.Errorf("failed to update pending verification: %w", err)
	}
	return nil
}

func (s *Store) DeletePending(email string) error {
	err := s.db.Where("email = ?", email).Delete(&PendingVerification{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete pending verification: %w", err)
	}
	return nil
}

// MarkVerified flips is_verified to true. Idempotent; a missing user is a
// no-op, callers confirm existence first.
func (s *Store) MarkVerified(email string) error {
	err := s.db.Model(&User{}).Where("email = ?", email).Update("is_verified", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// CompleteVerification flips the user's verified flag and removes the pending
// record as one transaction. A half-applied verification is a storage fault,
// never an observable state.
func (s *Store) CompleteVerification(email string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("email = ?", email).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("email = ?", email).Delete(&PendingVerification{}).Error
	})
	if err != nil {
		s.logger.Error("verification transaction failed",
			zap.Error(err),
			zap.String("email", email))
		return fmt.Errorf("failed to complete verification: %w", err)
	}

	s.logger.Info("user verified", zap.String("email", email))
	return nil
}
