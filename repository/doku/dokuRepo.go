package dokurepo

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

type CreatePaymentReq struct {
	TransID    string
	Amount     string // DOKU wants the amount formatted, e.g. "150000.00"
	PayerEmail string
}

type CreatePaymentResp struct {
	PaymentURL string
}

type PaymentStatus struct {
	TransIDMerchant string `json:"TRANSIDMERCHANT"`
	Amount          string `json:"AMOUNT"`
	ResultMsg       string `json:"RESULTMSG"`
}

type Repo interface {
	CreatePayment(ctx context.Context, req CreatePaymentReq) (*CreatePaymentResp, error)
	GetStatus(ctx context.Context, transID string) (*PaymentStatus, error)
}

// Words computes the DOKU integrity word:
// SHA-1(AMOUNT + MALLID + shared_key + TRANSIDMERCHANT), hex-encoded.
func Words(amount, mallID, sharedKey, transID string) string {
	sum := sha1.Sum([]byte(amount + mallID + sharedKey + transID))
	return hex.EncodeToString(sum[:])
}

func VerifyWords(amount, mallID, sharedKey, transID, supplied string) bool {
	want := Words(amount, mallID, sharedKey, transID)
	return subtle.ConstantTimeCompare([]byte(want), []byte(supplied)) == 1
}
