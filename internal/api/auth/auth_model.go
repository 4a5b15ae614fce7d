package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload. Subject carries the username; Role gates
// the admin surface.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
