package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	AutoMigrate bool `env:"AUTO_MIGRATE"`

	// Midtrans Snap hosts the payment page; the core API serves status checks.
	MidtransServerKey string `env:"MIDTRANS_SERVER_KEY,required"`
	MidtransSnapURL   string `env:"MIDTRANS_SNAP_URL" default:"https://app.sandbox.midtrans.com"`
	MidtransAPIURL    string `env:"MIDTRANS_API_URL" default:"https://api.sandbox.midtrans.com"`

	DokuMallID    string `env:"DOKU_MALL_ID"`
	DokuSharedKey string `env:"DOKU_SHARED_KEY"`
	DokuBaseURL   string `env:"DOKU_BASE_URL" default:"https://staging.doku.com"`

	// Background reconciliation of pending payments whose webhook never arrived.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" default:"5m"`
	SweepMinAge   time.Duration `env:"SWEEP_MIN_AGE" default:"10m"`
}
