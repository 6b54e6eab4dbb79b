package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/unigrievance/gateway/config"
	"github.com/unigrievance/gateway/services/identity"
	"github.com/unigrievance/gateway/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoPendingVerification = errors.New("no pending verification found")
	ErrPasscodeExpired       = errors.New("passcode has expired")
	ErrInvalidPasscode       = errors.New("invalid passcode")
	ErrResendLimitReached    = errors.New("maximum passcode resend attempts reached")
	ErrPasscodeHashingFailed = errors.New("failed to hash passcode")
)

// CooldownError rejects a reissue inside the cooldown window. RetryAfter is
// the first instant at which issuance becomes eligible again.
type CooldownError struct {
	RetryAfter time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("passcode recently sent, retry after %s", e.RetryAfter.Format(time.RFC3339))
}

// Issued is the outcome of a successful issuance. Passcode is the plaintext
// code for dispatch; only its hash is stored.
type Issued struct {
	Passcode    string
	ExpiresAt   time.Time
	ResendCount int
}

// Service drives the passcode lifecycle for one email at a time: issuance
// under cooldown and resend limits, expiry checks, and the verify-and-delete
// transition.
type Service struct {
	config *config.Config
	store  *identity.Store
	logger *logging.Service
}

func NewService(cfg *config.Config, store *identity.Store, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

// GeneratePasscode draws a 6-digit code uniformly from [100000, 999999].
func GeneratePasscode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate passcode: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *Service) hashPasscode(passcode string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("passcode hashing failed", zap.Error(err))
		return "", ErrPasscodeHashingFailed
	}
	return string(hash), nil
}

// Issue creates or refreshes the pending passcode for an email. Guards are
// evaluated in order: cooldown first, then the resend ceiling. An expired
// record is never blocked by the ceiling; reissue after expiry starts a fresh
// window with the counter back at zero.
func (s *Service) Issue(email string) (*Issued, error) {
	now := time.Now()

	pending, err := s.store.FindPending(email)
	if err != nil && !errors.Is(err, identity.ErrPendingNotFound) {
		return nil, err
	}

	if pending != nil {
		cooldown := s.config.Auth.OTPCooldownWindow()
		if now.Sub(pending.LastIssuedAt) < cooldown {
			retryAfter := pending.LastIssuedAt.Add(cooldown)
			s.logger.Warn("passcode reissue inside cooldown window",
				zap.String("email", email),
				zap.Time("retry_after", retryAfter))
			return nil, &CooldownError{RetryAfter: retryAfter}
		}

		if pending.ResendCount >= s.config.Auth.MaxResendAttempts && !pending.Expired(now) {
			s.logger.Warn("passcode resend limit reached",
				zap.String("email", email),
				zap.Int("resend_count", pending.ResendCount))
			return nil, ErrResendLimitReached
		}
	}

	passcode, err := GeneratePasscode()
	if err != nil {
		return nil, err
	}

	hash, err := s.hashPasscode(passcode)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.config.Auth.OTPExpiryWindow())

	if pending != nil {
		if pending.Expired(now) {
			pending.ResendCount = 0
		} else {
			pending.ResendCount++
		}
		pending.PasscodeHash = hash
		pending.ExpiresAt = expiresAt
		pending.LastIssuedAt = now

		if err := s.store.UpdatePending(pending); err != nil {
			return nil, err
		}
	} else {
		pending = &identity.PendingVerification{
			Email:        email,
			PasscodeHash: hash,
			ExpiresAt:    expiresAt,
			ResendCount:  0,
			LastIssuedAt: now,
		}

		if err := s.store.CreatePending(pending); err != nil {
			return nil, err
		}
	}

	s.logger.Info("passcode issued",
		zap.String("email", email),
		zap.Int("resend_count", pending.ResendCount),
		zap.Time("expires_at", expiresAt))

	return &Issued{
		Passcode:    passcode,
		ExpiresAt:   expiresAt,
		ResendCount: pending.ResendCount,
	}, nil
}

// Verify checks a submitted code against the pending record. Expiry is
// checked before the hash compare, and only a match mutates anything: the
// user is marked verified and the pending record deleted atomically.
func (s *Service) Verify(email, passcode string) error {
	pending, err := s.store.FindPending(email)
	if err != nil {
		if errors.Is(err, identity.ErrPendingNotFound) {
			return ErrNoPendingVerification
		}
		return err
	}

	if pending.Expired(time.Now()) {
		s.logger.Warn("expired passcode submitted", zap.String("email", email))
		return ErrPasscodeExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(pending.PasscodeHash), []byte(passcode)); err != nil {
		s.logger.Warn("invalid passcode submitted", zap.String("email", email))
		return ErrInvalidPasscode
	}

	return s.store.CompleteVerification(email)
}
