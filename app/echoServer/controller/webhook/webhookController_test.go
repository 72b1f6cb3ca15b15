package webhook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinicpay/app/echoServer/controller/webhook"
	"clinicpay/model"
	rec "clinicpay/service/reconcile"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type svcMock struct {
	midtransFn func(ctx context.Context, raw []byte) error
	dokuFn     func(ctx context.Context, raw []byte) error
}

func (m *svcMock) HandleMidtrans(ctx context.Context, raw []byte) error {
	return m.midtransFn(ctx, raw)
}
func (m *svcMock) HandleDoku(ctx context.Context, raw []byte) error { return m.dokuFn(ctx, raw) }
func (m *svcMock) CheckPending(ctx context.Context, p *model.Payment) (bool, error) {
	return false, nil
}

type testErr struct{ code rec.ErrCode }

func (e testErr) Error() string     { return string(e.code) }
func (e testErr) Code() rec.ErrCode { return e.code }

func do(t *testing.T, svc rec.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/midtrans/notify", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)

	h := &webhook.Controller{Svc: svc, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	require.NoError(t, h.HandleMidtrans(c))
	return w
}

func TestHandleMidtrans_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"processed", nil, http.StatusOK},
		{"bad signature", testErr{rec.ErrBadSignature}, http.StatusForbidden},
		{"unknown order", testErr{rec.ErrUnknownOrder}, http.StatusNotFound},
		{"bad payload", testErr{rec.ErrBadPayload}, http.StatusBadRequest},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &svcMock{
				midtransFn: func(ctx context.Context, raw []byte) error { return tc.err },
			}
			w := do(t, svc, `{"order_id":"x"}`)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestHandleMidtrans_PassesRawBody(t *testing.T) {
	var got []byte
	svc := &svcMock{
		midtransFn: func(ctx context.Context, raw []byte) error {
			got = raw
			return nil
		},
	}
	body := `{"order_id":"ORDER-1","transaction_status":"settlement"}`
	w := do(t, svc, body)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, body, string(got))
}
