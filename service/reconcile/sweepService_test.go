package reconcilesvc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"clinicpay/model"
	reconcilesvc "clinicpay/service/reconcile"

	"github.com/stretchr/testify/require"
)

type listerMock struct {
	listFn func(ctx context.Context, olderThan time.Time) ([]model.Payment, error)
}

func (m *listerMock) ListStalePending(ctx context.Context, olderThan time.Time) ([]model.Payment, error) {
	return m.listFn(ctx, olderThan)
}

type svcMock struct {
	checkFn func(ctx context.Context, p *model.Payment) (bool, error)
}

func (m *svcMock) HandleMidtrans(ctx context.Context, raw []byte) error { return nil }
func (m *svcMock) HandleDoku(ctx context.Context, raw []byte) error     { return nil }
func (m *svcMock) CheckPending(ctx context.Context, p *model.Payment) (bool, error) {
	return m.checkFn(ctx, p)
}

func TestSweepStale_AppliesOutcomes(t *testing.T) {
	lister := &listerMock{
		listFn: func(ctx context.Context, olderThan time.Time) ([]model.Payment, error) {
			require.True(t, olderThan.Before(time.Now()))
			return []model.Payment{
				*pendingPayment(1, model.GatewayMidtrans, "ORDER-A"),
				*pendingPayment(2, model.GatewayMidtrans, "ORDER-B"),
				*pendingPayment(3, model.GatewayDoku, "ORDER-C"),
			}, nil
		},
	}
	svc := &svcMock{
		checkFn: func(ctx context.Context, p *model.Payment) (bool, error) {
			switch p.ExternalID {
			case "ORDER-A":
				return true, nil
			case "ORDER-B":
				// provider down for this one; sweep must keep going
				return false, errors.New("gateway unreachable")
			default:
				return false, nil
			}
		},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sw := reconcilesvc.NewSweeper(lister, svc, 10*time.Minute, log)

	applied, err := sw.SweepStale(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, applied)
}

func TestSweepStale_ListErrorPropagates(t *testing.T) {
	lister := &listerMock{
		listFn: func(ctx context.Context, olderThan time.Time) ([]model.Payment, error) {
			return nil, errors.New("db down")
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sw := reconcilesvc.NewSweeper(lister, &svcMock{}, 10*time.Minute, log)

	_, err := sw.SweepStale(context.Background())
	require.Error(t, err)
}
