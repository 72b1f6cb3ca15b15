// Package httpx holds the shared outbound HTTP client used by the
// payment gateway adapters.
package httpx

import (
	"net"
	"net/http"
	"time"
)

var defaultClient = &http.Client{
	Timeout: 15 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

func Client() *http.Client { return defaultClient }
