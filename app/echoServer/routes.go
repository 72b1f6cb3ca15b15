package echoServer

import (
	"clinicpay/app/echoServer/controller/booking"
	"clinicpay/app/echoServer/controller/payment"
	"clinicpay/app/echoServer/controller/webhook"
	"clinicpay/app/echoServer/jwtx"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Booking   *booking.Controller
	Payment   *payment.Controller
	Webhook   *webhook.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public: gateway servers call these, there is no session to present.
	pub := e.Group("/v1")
	pub.POST("/payments/midtrans/notify", c.Webhook.HandleMidtrans)
	pub.POST("/payments/doku/notify", c.Webhook.HandleDoku)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id extraction
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	auth.POST("/bookings", c.Booking.Create)
	auth.GET("/bookings/:id", c.Booking.Detail)

	auth.POST("/payments", c.Payment.Initiate)
	auth.GET("/payments/:id/status", c.Payment.Status)
}
