package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issue signs an HS256 token carrying the user id and role. Verification
// is handled by the echo-jwt middleware on the server side.
func Issue(secret string, userID int64, role string, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
