package models

import "github.com/golang-jwt/jwt/v5"

// Roles carried in the JWT. The identity service issuing the tokens is
// outside this repository.
const (
	RoleShopOwner = "SHOP_OWNER"
	RoleProvider  = "PROVIDER"
)

type JwtCustomClaims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Message string `json:"message"`
}
