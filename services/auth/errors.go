package auth

import "errors"

var (
	ErrDomainRestricted      = errors.New("registration is restricted to approved university domains")
	ErrInvalidStudentID      = errors.New("student id must be exactly 10 digits")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrAlreadyRegistered     = errors.New("account already registered and verified")
	ErrUserNotFound          = errors.New("user not found")
	ErrNotVerified           = errors.New("account is not verified")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrDispatchFailed        = errors.New("failed to send verification email")
)
