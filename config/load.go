package config

import (
	"log/slog"
	"os"
	"time"
)

func Load() App {
	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: must("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET", "local_dev_secret"),
		Env:         getenv("APP_ENV", "dev"),

		AutoMigrate: os.Getenv("AUTO_MIGRATE") == "1",

		MidtransServerKey: must("MIDTRANS_SERVER_KEY"),
		MidtransSnapURL:   getenv("MIDTRANS_SNAP_URL", "https://app.sandbox.midtrans.com"),
		MidtransAPIURL:    getenv("MIDTRANS_API_URL", "https://api.sandbox.midtrans.com"),

		DokuMallID:    os.Getenv("DOKU_MALL_ID"),
		DokuSharedKey: os.Getenv("DOKU_SHARED_KEY"),
		DokuBaseURL:   getenv("DOKU_BASE_URL", "https://staging.doku.com"),

		SweepInterval: duration("SWEEP_INTERVAL", 5*time.Minute),
		SweepMinAge:   duration("SWEEP_MIN_AGE", 10*time.Minute),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}

func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("bad duration env, using default", "key", k, "value", v)
		return def
	}
	return d
}
