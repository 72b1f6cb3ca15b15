// Package main clinic payment API.
//
// @title           Clinic Payments API
// @version         1.0
// @description     Booking payments: gateway sessions, webhooks, reconciliation.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"clinicpay/app/echoServer"
	bookingctrl "clinicpay/app/echoServer/controller/booking"
	paymentctrl "clinicpay/app/echoServer/controller/payment"
	webhookctrl "clinicpay/app/echoServer/controller/webhook"
	"clinicpay/app/echoServer/validation"
	"clinicpay/config"
	bookingrepo "clinicpay/repository/booking"
	dokurepo "clinicpay/repository/doku"
	midtransrepo "clinicpay/repository/midtrans"
	paymentrepo "clinicpay/repository/payment"
	bookingsvc "clinicpay/service/booking"
	paymentsvc "clinicpay/service/payment"
	reconcilesvc "clinicpay/service/reconcile"
	"clinicpay/util/database"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(ctx, db, "migrations"); err != nil {
			log.Error("db migration failed", "err", err)
			os.Exit(1)
		}
		log.Info("database migrated")
	}

	// repos
	br := bookingrepo.New(db)
	pr := paymentrepo.New(db)
	mid := midtransrepo.NewHTTP(cfg.MidtransServerKey, cfg.MidtransSnapURL, cfg.MidtransAPIURL)
	dok := dokurepo.NewHTTP(cfg.DokuMallID, cfg.DokuSharedKey, cfg.DokuBaseURL)

	// services
	rec := reconcilesvc.New(pr, mid, dok, cfg.MidtransServerKey, cfg.DokuMallID, cfg.DokuSharedKey, log)
	bs := bookingsvc.New(br, pr)
	ps := paymentsvc.New(br, pr, mid, dok, rec)

	// background reconciliation of stale pending payments
	sweeper := reconcilesvc.NewSweeper(pr, rec, cfg.SweepMinAge, log)
	go func() {
		t := time.NewTicker(cfg.SweepInterval)
		defer t.Stop()
		for range t.C {
			if _, err := sweeper.SweepStale(ctx); err != nil {
				log.Error("reconciliation sweep failed", "err", err)
			}
		}
	}()

	// controllers
	v := validator.New()
	bookingC := &bookingctrl.Controller{Svc: bs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, V: v, Log: log}
	webhookC := &webhookctrl.Controller{Svc: rec, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Booking: bookingC,
		Payment: paymentC,
		Webhook: webhookC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
