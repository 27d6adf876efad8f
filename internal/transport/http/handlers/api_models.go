package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allahbobax/boolean-api/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the user view returned by the API. The password hash
// never crosses this boundary.
type UserSummary struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Subscription        string     `json:"subscription"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date,omitempty"`
	Avatar              *string    `json:"avatar,omitempty"`
	RegisteredAt        time.Time  `json:"registered_at"`
	IsAdmin             bool       `json:"is_admin"`
	EmailVerified       bool       `json:"email_verified"`
	HWIDBound           bool       `json:"hwid_bound"`
	OAuthProvider       *string    `json:"oauth_provider,omitempty"`
}

// NewUserSummary maps a domain user onto the API view.
func NewUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:                  user.ID,
		Username:            user.Username,
		Email:               user.Email,
		Subscription:        string(user.Subscription),
		SubscriptionEndDate: user.SubscriptionEndDate,
		Avatar:              user.Avatar,
		RegisteredAt:        user.RegisteredAt,
		IsAdmin:             user.IsAdmin,
		EmailVerified:       user.EmailVerified,
		HWIDBound:           user.HWID != nil,
		OAuthProvider:       user.OAuthProvider,
	}
}

// RegistrationRequest is the register endpoint payload.
type RegistrationRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the login endpoint payload.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthResponse carries a session token and the authenticated user.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// LockedResponse tells a locked-out client how long to wait.
type LockedResponse struct {
	Error            string `json:"error"`
	Locked           bool   `json:"locked"`
	MinutesRemaining int    `json:"minutes_remaining"`
}

// CsrfTokenResponse carries a freshly issued anti-forgery token.
type CsrfTokenResponse struct {
	Token string `json:"csrf_token"`
}

// HWIDRequest carries a hardware id to bind or verify.
type HWIDRequest struct {
	UserID string `json:"user_id" binding:"required"`
	HWID   string `json:"hwid" binding:"required"`
}

// HWIDResetRequest names the account whose binding is cleared.
type HWIDResetRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// HWIDStatusResponse reports the currently bound hardware id, if any.
type HWIDStatusResponse struct {
	HWID *string `json:"hwid"`
}

// HWIDVerifyResponse reports the device check outcome and the subscription
// the launcher needs to enforce entitlements.
type HWIDVerifyResponse struct {
	Valid               bool       `json:"valid"`
	Subscription        string     `json:"subscription"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date,omitempty"`
}

// HealthResponse reports process status and dependency reachability.
type HealthResponse struct {
	Status    string            `json:"status"`
	StartedAt time.Time         `json:"started_at"`
	Checks    map[string]string `json:"checks,omitempty"`
}
