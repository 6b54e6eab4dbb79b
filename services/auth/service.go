package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unigrievance/gateway/config"
	"github.com/unigrievance/gateway/services/identity"
	"github.com/unigrievance/gateway/services/logging"
	"github.com/unigrievance/gateway/services/mail"
	"github.com/unigrievance/gateway/services/otp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const RoleStudent = "student"

const studentIDLength = 10

type Service struct {
	config *config.Config
	store  *identity.Store
	otp    *otp.Service
	mailer mail.Sender
	logger *logging.Service
}

func NewService(cfg *config.Config, store *identity.Store, otpSvc *otp.Service, mailer mail.Sender, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		store:  store,
		otp:    otpSvc,
		mailer: mailer,
		logger: logger,
	}
}

type RegisterRequest struct {
	Email      string `json:"email"`
	StudentID  string `json:"student_id"`
	Password   string `json:"password"`
	Course     string `json:"course"`
	Department string `json:"department"`
}

// RegisterResult reports a dispatched (or simulated) passcode. DevOTP is only
// populated when no mail channel is configured, so local setups can complete
// verification without an inbox.
type RegisterResult struct {
	Message string `json:"message"`
	DevOTP  string `json:"dev_otp,omitempty"`
}

// Profile is the login response payload. No session or token is issued; any
// session establishment is the caller's concern.
type Profile struct {
	Email      string `json:"email"`
	ID         string `json:"id"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Course     string `json:"course"`
	Department string `json:"department"`
}

// ValidateEmailDomain checks the lowercased email against the configured
// domain suffixes.
func (s *Service) ValidateEmailDomain(email string) error {
	for _, domain := range s.config.Auth.AllowedDomains {
		if strings.HasSuffix(email, "@"+domain) {
			return nil
		}
	}
	return ErrDomainRestricted
}

// ValidateStudentID accepts exactly 10 decimal digits.
func ValidateStudentID(studentID string) error {
	if len(studentID) != studentIDLength {
		return ErrInvalidStudentID
	}
	for _, r := range studentID {
		if r < '0' || r > '9' {
			return ErrInvalidStudentID
		}
	}
	return nil
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.PasswordMinLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

// Register validates the request, creates or refreshes the unverified user,
// issues a passcode, and dispatches it. A brand-new user row is rolled back
// if dispatch fails; a re-registered existing row is left in place.
func (s *Service) Register(req RegisterRequest) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	studentID := strings.TrimSpace(req.StudentID)
	course := strings.TrimSpace(req.Course)
	department := strings.TrimSpace(req.Department)

	if err := s.ValidateEmailDomain(email); err != nil {
		return nil, err
	}
	if err := ValidateStudentID(studentID); err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var newUser bool
	existing, err := s.store.FindByEmailOrStudentID(email, studentID)
	switch {
	case err == nil:
		if existing.IsVerified {
			s.logger.Warn("registration attempt for verified account", zap.String("email", email))
			return nil, ErrAlreadyRegistered
		}
		existing.PasswordHash = passwordHash
		existing.Course = course
		existing.Department = department
		if err := s.store.UpdateUnverified(existing); err != nil {
			return nil, err
		}
	case errors.Is(err, identity.ErrUserNotFound):
		newUser = true
		user := &identity.User{
			Email:        email,
			StudentID:    studentID,
			PasswordHash: passwordHash,
			Course:       course,
			Department:   department,
		}
		if err := s.store.CreateUser(user); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	issued, err := s.otp.Issue(email)
	if err != nil {
		return nil, err
	}

	if !s.mailer.Enabled() {
		s.logger.Info("mail channel not configured, returning passcode in response",
			zap.String("email", email))
		return &RegisterResult{
			Message: "OTP generated (mail dispatch not configured)",
			DevOTP:  issued.Passcode,
		}, nil
	}

	subject := fmt.Sprintf("Your Verification Code - %s", s.config.App.Name)
	body := fmt.Sprintf(
		"Your Verification Code is: %s\n\nValid for %d minutes.\nDo not share this with anyone.",
		issued.Passcode, s.config.Auth.OTPExpiryMinutes)

	if err := s.mailer.Send(email, subject, body); err != nil {
		s.logger.Error("passcode dispatch failed",
			zap.Error(err),
			zap.String("email", email),
			zap.Bool("new_user", newUser))
		if newUser {
			// A first-time account with no deliverable passcode would be
			// stranded; remove it so the student can register again cleanly.
			if delErr := s.store.DeleteUnverified(email); delErr != nil {
				s.logger.Error("failed to roll back user after dispatch failure",
					zap.Error(delErr), zap.String("email", email))
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	s.logger.Info("verification email dispatched", zap.String("email", email))
	return &RegisterResult{Message: "OTP sent to your email!"}, nil
}

// VerifyOTP confirms a submitted passcode and flips the account to verified.
func (s *Service) VerifyOTP(email, passcode string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.otp.Verify(email, strings.TrimSpace(passcode))
}

// Login authenticates by email or student id plus password and returns the
// profile payload.
func (s *Service) Login(loginID, password string) (*Profile, error) {
	loginID = strings.TrimSpace(loginID)
	if strings.Contains(loginID, "@") {
		loginID = strings.ToLower(loginID)
	}

	user, err := s.store.FindByLogin(loginID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsVerified {
		s.logger.Warn("login attempt on unverified account", zap.String("email", user.Email))
		return nil, ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login with invalid credentials", zap.String("email", user.Email))
		return nil, ErrInvalidCredentials
	}

	name, _, _ := strings.Cut(user.Email, "@")

	return &Profile{
		Email:      user.Email,
		ID:         user.StudentID,
		Role:       RoleStudent,
		Name:       name,
		Course:     user.Course,
		Department: user.Department,
	}, nil
}
