package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionPaymentRead    = "payment:read"
	PermissionPaymentWrite   = "payment:write"
	PermissionWithdrawalRead = "withdrawal:read"
	PermissionWithdrawal     = "withdrawal:write"
)

// UserClaims carries the authenticated identity through a request.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission.
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
