package midtransrepo

import (
	"bytes"
	"clinicpay/util/httpx"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type httpRepo struct {
	serverKey string
	snapURL   string
	apiURL    string
	client    *http.Client
}

func NewHTTP(serverKey, snapURL, apiURL string) Repo {
	return &httpRepo{serverKey: serverKey, snapURL: snapURL, apiURL: apiURL, client: httpx.Client()}
}

func (r *httpRepo) CreateTransaction(ctx context.Context, req CreateTransactionReq) (*CreateTransactionResp, error) {
	body := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     req.OrderID,
			"gross_amount": req.Amount,
		},
		"customer_details": map[string]any{
			"email": req.PayerEmail,
			"phone": req.PayerPhone,
		},
	}
	b, _ := json.Marshal(body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.snapURL+"/snap/v1/transactions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.serverKey, "")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("midtrans create transaction failed: %s", resp.Status)
	}

	var out struct {
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("midtrans: empty snap token")
	}

	return &CreateTransactionResp{Token: out.Token, RedirectURL: out.RedirectURL}, nil
}

func (r *httpRepo) GetStatus(ctx context.Context, orderID string) (*TransactionStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+"/v2/"+orderID+"/status", nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.serverKey, "")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("midtrans status check failed: %s", resp.Status)
	}

	var out TransactionStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.TransactionStatus == "" {
		return nil, errors.New("midtrans: empty transaction_status")
	}
	return &out, nil
}
