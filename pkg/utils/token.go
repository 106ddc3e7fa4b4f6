package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken creates a JWT carrying the user id and role.
func GenerateToken(secret string, userID uint64, roleID uint, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role_id": roleID,
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies the signature and expiry and returns the claims the
// middleware needs.
func ValidateToken(secret, encodedToken string) (userID uint64, roleID uint, err error) {
	token, err := jwt.Parse(encodedToken, func(token *jwt.Token) (interface{}, error) {
		// HMAC only
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, ErrInvalidToken
	}

	// numbers come back as float64
	if val, ok := claims["user_id"].(float64); ok {
		userID = uint64(val)
	}
	if val, ok := claims["role_id"].(float64); ok {
		roleID = uint(val)
	}
	if userID == 0 {
		return 0, 0, ErrInvalidToken
	}
	return userID, roleID, nil
}
