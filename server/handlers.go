package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/unigrievance/gateway/services/auth"
	"github.com/unigrievance/gateway/services/identity"
	"github.com/unigrievance/gateway/services/logging"
	"github.com/unigrievance/gateway/services/otp"
	"go.uber.org/zap"
)

type Handlers struct {
	auth   *auth.Service
	logger *logging.Service
}

func NewHandlers(authSvc *auth.Service, logger *logging.Service) *Handlers {
	return &Handlers{
		auth:   authSvc,
		logger: logger,
	}
}

func (h *Handlers) RegisterRoutes(s *Server) {
	e := s.Echo()
	e.GET("/", h.Health)

	api := e.Group("/api")
	api.POST("/signup", h.Signup)
	api.POST("/verify-otp", h.VerifyOTP)
	api.POST("/login", h.Login)
}

func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Backend is running!",
		"status":  "ok",
	})
}

func (h *Handlers) Signup(c echo.Context) error {
	var req auth.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request payload"})
	}

	result, err := h.auth.Register(req)
	if err != nil {
		return h.registerError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handlers) registerError(c echo.Context, err error) error {
	var cooldownErr *otp.CooldownError
	switch {
	case errors.Is(err, auth.ErrDomainRestricted):
		return c.JSON(http.StatusForbidden, echo.Map{"message": err.Error()})
	case errors.Is(err, auth.ErrInvalidStudentID):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Use a valid 10-digit ID"})
	case errors.Is(err, auth.ErrPasswordTooShort):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, auth.ErrAlreadyRegistered):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Account already registered & verified. Please login."})
	case errors.As(err, &cooldownErr):
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"message":     "Please wait before resending OTP",
			"cooldown":    true,
			"retry_after": cooldownErr.RetryAfter.Unix(),
		})
	case errors.Is(err, otp.ErrResendLimitReached):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "Max OTP attempts reached. Try again later."})
	case errors.Is(err, identity.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"message": "Another registration for this identity is in progress. Please retry."})
	case errors.Is(err, auth.ErrDispatchFailed):
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Could not send verification email. Please try again."})
	default:
		return h.serverError(c, err)
	}
}

func (h *Handlers) VerifyOTP(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request payload"})
	}

	if err := h.auth.VerifyOTP(req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, otp.ErrNoPendingVerification):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "No pending verification found"})
		case errors.Is(err, otp.ErrPasscodeExpired):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "OTP Expired. Please Request New."})
		case errors.Is(err, otp.ErrInvalidPasscode):
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid OTP"})
		default:
			return h.serverError(c, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Verification Successful!",
		"verified": true,
	})
}

func (h *Handlers) Login(c echo.Context) error {
	var req struct {
		LoginID  string `json:"login_id"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request payload"})
	}

	profile, err := h.auth.Login(req.LoginID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found. Please register."})
		case errors.Is(err, auth.ErrNotVerified):
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Account not verified. Please complete verification."})
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials"})
		default:
			return h.serverError(c, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    profile,
	})
}

func (h *Handlers) serverError(c echo.Context, err error) error {
	h.logger.Error("request failed with storage error",
		zap.Error(err),
		zap.String("path", c.Path()))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong. Please try again."})
}
