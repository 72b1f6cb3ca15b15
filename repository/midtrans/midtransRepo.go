package midtransrepo

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

type CreateTransactionReq struct {
	OrderID    string
	Amount     float64
	PayerEmail string
	PayerPhone string
}

type CreateTransactionResp struct {
	Token       string
	RedirectURL string
}

// TransactionStatus is the subset of the core-API status response the
// reconciler cares about.
type TransactionStatus struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
}

type Repo interface {
	CreateTransaction(ctx context.Context, req CreateTransactionReq) (*CreateTransactionResp, error)
	GetStatus(ctx context.Context, orderID string) (*TransactionStatus, error)
}

// Signature computes the webhook signature_key:
// SHA-512(order_id + status_code + gross_amount + server_key), hex-encoded.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(orderID, statusCode, grossAmount, serverKey, supplied string) bool {
	want := Signature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(supplied)) == 1
}
