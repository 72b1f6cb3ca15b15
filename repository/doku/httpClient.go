package dokurepo

import (
	"clinicpay/util/httpx"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type httpRepo struct {
	mallID    string
	sharedKey string
	baseURL   string
	client    *http.Client
}

func NewHTTP(mallID, sharedKey, baseURL string) Repo {
	return &httpRepo{mallID: mallID, sharedKey: sharedKey, baseURL: baseURL, client: httpx.Client()}
}

func (r *httpRepo) CreatePayment(ctx context.Context, req CreatePaymentReq) (*CreatePaymentResp, error) {
	form := url.Values{}
	form.Set("MALLID", r.mallID)
	form.Set("TRANSIDMERCHANT", req.TransID)
	form.Set("AMOUNT", req.Amount)
	form.Set("EMAIL", req.PayerEmail)
	form.Set("WORDS", Words(req.Amount, r.mallID, r.sharedKey, req.TransID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/payment/generate", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("doku generate payment failed: %s", resp.Status)
	}

	var out struct {
		PaymentURL string `json:"payment_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.PaymentURL == "" {
		return nil, errors.New("doku: empty payment url")
	}
	return &CreatePaymentResp{PaymentURL: out.PaymentURL}, nil
}

func (r *httpRepo) GetStatus(ctx context.Context, transID string) (*PaymentStatus, error) {
	u := fmt.Sprintf("%s/api/payment/status/%s?MALLID=%s", r.baseURL, url.PathEscape(transID), url.QueryEscape(r.mallID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("doku status check failed: %s", resp.Status)
	}

	var out PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ResultMsg == "" {
		return nil, errors.New("doku: empty RESULTMSG")
	}
	return &out, nil
}
