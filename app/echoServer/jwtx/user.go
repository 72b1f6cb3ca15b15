// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// UserIDFromContext pulls the subject claim out of the verified token the
// jwt middleware stored on the request context.
func UserIDFromContext(c echo.Context) (int64, error) {
	var claims jwt.MapClaims
	switch v := c.Get("user").(type) {
	case *jwt.Token:
		mc, ok := v.Claims.(jwt.MapClaims)
		if !ok {
			return 0, errors.New("invalid jwt claims")
		}
		claims = mc
	case jwt.MapClaims:
		claims = v
	default:
		return 0, errors.New("no jwt token in context")
	}

	if f, ok := claims["sub"].(float64); ok {
		return int64(f), nil
	}
	return 0, errors.New("sub missing in claims")
}
