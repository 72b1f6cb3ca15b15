package paymentsvc_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"clinicpay/model"
	dokurepo "clinicpay/repository/doku"
	midtransrepo "clinicpay/repository/midtrans"
	paymentrepo "clinicpay/repository/payment"
	paymentsvc "clinicpay/service/payment"

	"github.com/stretchr/testify/require"
)

type bookingRepoMock struct {
	getFn func(ctx context.Context, id int64) (*model.Booking, error)
}

func (m *bookingRepoMock) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	return m.getFn(ctx, id)
}

type paymentRepoMock struct {
	insertFn func(ctx context.Context, p *model.Payment) (int64, error)
	getFn    func(ctx context.Context, id int64) (*model.Payment, error)

	inserted []*model.Payment
}

func (m *paymentRepoMock) InsertPending(ctx context.Context, p *model.Payment) (int64, error) {
	m.inserted = append(m.inserted, p)
	if m.insertFn == nil {
		return 1, nil
	}
	return m.insertFn(ctx, p)
}

func (m *paymentRepoMock) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	return m.getFn(ctx, id)
}

type midMock struct {
	createFn func(ctx context.Context, req midtransrepo.CreateTransactionReq) (*midtransrepo.CreateTransactionResp, error)
	calls    int
}

func (m *midMock) CreateTransaction(ctx context.Context, req midtransrepo.CreateTransactionReq) (*midtransrepo.CreateTransactionResp, error) {
	m.calls++
	return m.createFn(ctx, req)
}

func (m *midMock) GetStatus(ctx context.Context, orderID string) (*midtransrepo.TransactionStatus, error) {
	return nil, errors.New("not used")
}

type dokuMock struct {
	createFn func(ctx context.Context, req dokurepo.CreatePaymentReq) (*dokurepo.CreatePaymentResp, error)
	calls    int
}

func (m *dokuMock) CreatePayment(ctx context.Context, req dokurepo.CreatePaymentReq) (*dokurepo.CreatePaymentResp, error) {
	m.calls++
	return m.createFn(ctx, req)
}

func (m *dokuMock) GetStatus(ctx context.Context, transID string) (*dokurepo.PaymentStatus, error) {
	return nil, errors.New("not used")
}

type recMock struct {
	checkFn func(ctx context.Context, p *model.Payment) (bool, error)
}

func (m *recMock) CheckPending(ctx context.Context, p *model.Payment) (bool, error) {
	if m.checkFn == nil {
		return false, nil
	}
	return m.checkFn(ctx, p)
}

func pendingBooking(id, userID int64) *model.Booking {
	return &model.Booking{
		ID:          id,
		UserID:      userID,
		SlotID:      3,
		Type:        model.BookingTreatment,
		Status:      model.BookingPending,
		TotalAmount: 150000,
	}
}

func initiateReq(bookingID int64, gw model.PaymentGateway) paymentsvc.InitiateReq {
	return paymentsvc.InitiateReq{
		BookingID:  bookingID,
		Gateway:    gw,
		Method:     "qris",
		PayerEmail: "patient@example.com",
		PayerPhone: "+628123456789",
	}
}

func TestInitiate_MidtransSuccess(t *testing.T) {
	ctx := context.Background()
	br := &bookingRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Booking, error) {
			return pendingBooking(id, 7), nil
		},
	}
	pr := &paymentRepoMock{
		insertFn: func(ctx context.Context, p *model.Payment) (int64, error) { return 99, nil },
	}
	var gatewayOrderID string
	mid := &midMock{
		createFn: func(ctx context.Context, req midtransrepo.CreateTransactionReq) (*midtransrepo.CreateTransactionResp, error) {
			gatewayOrderID = req.OrderID
			require.Equal(t, 150000.0, req.Amount)
			return &midtransrepo.CreateTransactionResp{Token: "tok", RedirectURL: "https://pay.example/tok"}, nil
		},
	}
	svc := paymentsvc.New(br, pr, mid, &dokuMock{}, &recMock{})

	out, err := svc.Initiate(ctx, 7, initiateReq(5, model.GatewayMidtrans))
	require.NoError(t, err)
	require.Equal(t, int64(99), out.PaymentID)
	require.Equal(t, model.PaymentPending, out.Status)
	require.Equal(t, "https://pay.example/tok", out.RedirectURL)

	// row was inserted after the gateway confirmed, with the same order id
	require.Len(t, pr.inserted, 1)
	require.Equal(t, gatewayOrderID, pr.inserted[0].ExternalID)
	require.True(t, strings.HasPrefix(out.ExternalID, "clinic-5-"))
}

func TestInitiate_GatewayFailureLeavesNoRow(t *testing.T) {
	br := &bookingRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Booking, error) {
			return pendingBooking(id, 7), nil
		},
	}
	pr := &paymentRepoMock{}
	mid := &midMock{
		createFn: func(ctx context.Context, req midtransrepo.CreateTransactionReq) (*midtransrepo.CreateTransactionResp, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := paymentsvc.New(br, pr, mid, &dokuMock{}, &recMock{})

	_, err := svc.Initiate(context.Background(), 7, initiateReq(5, model.GatewayMidtrans))
	require.Equal(t, paymentsvc.ErrGatewayUnavailable, paymentsvc.Code(err))
	require.Empty(t, pr.inserted)
}

func TestInitiate_ManualSkipsGateway(t *testing.T) {
	br := &bookingRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Booking, error) {
			return pendingBooking(id, 7), nil
		},
	}
	pr := &paymentRepoMock{
		insertFn: func(ctx context.Context, p *model.Payment) (int64, error) { return 12, nil },
	}
	mid := &midMock{}
	dok := &dokuMock{}
	svc := paymentsvc.New(br, pr, mid, dok, &recMock{})

	out, err := svc.Initiate(context.Background(), 7, initiateReq(5, model.GatewayManual))
	require.NoError(t, err)
	require.Empty(t, out.RedirectURL)
	require.Equal(t, 0, mid.calls)
	require.Equal(t, 0, dok.calls)
	require.Len(t, pr.inserted, 1)
	require.Nil(t, pr.inserted[0].RedirectURL)
}

func TestInitiate_Rejections(t *testing.T) {
	pr := &paymentRepoMock{}
	svc := func(b *model.Booking, berr error) paymentsvc.Service {
		br := &bookingRepoMock{
			getFn: func(ctx context.Context, id int64) (*model.Booking, error) { return b, berr },
		}
		return paymentsvc.New(br, pr, &midMock{}, &dokuMock{}, &recMock{})
	}

	_, err := svc(nil, sql.ErrNoRows).Initiate(context.Background(), 7, initiateReq(5, model.GatewayManual))
	require.Equal(t, paymentsvc.ErrBookingNotFound, paymentsvc.Code(err))

	_, err = svc(pendingBooking(5, 8), nil).Initiate(context.Background(), 7, initiateReq(5, model.GatewayManual))
	require.Equal(t, paymentsvc.ErrNotOwner, paymentsvc.Code(err))

	confirmed := pendingBooking(5, 7)
	confirmed.Status = model.BookingConfirmed
	_, err = svc(confirmed, nil).Initiate(context.Background(), 7, initiateReq(5, model.GatewayManual))
	require.Equal(t, paymentsvc.ErrBookingNotPending, paymentsvc.Code(err))

	require.Empty(t, pr.inserted)
}

func TestInitiate_PendingConflict(t *testing.T) {
	br := &bookingRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Booking, error) {
			return pendingBooking(id, 7), nil
		},
	}
	pr := &paymentRepoMock{
		insertFn: func(ctx context.Context, p *model.Payment) (int64, error) {
			return 0, paymentrepo.ErrPendingExists
		},
	}
	svc := paymentsvc.New(br, pr, &midMock{}, &dokuMock{}, &recMock{})

	_, err := svc.Initiate(context.Background(), 7, initiateReq(5, model.GatewayManual))
	require.Equal(t, paymentsvc.ErrPendingExists, paymentsvc.Code(err))
}

func TestInitiate_OrderIDsAreUnique(t *testing.T) {
	br := &bookingRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Booking, error) {
			return pendingBooking(id, 7), nil
		},
	}
	pr := &paymentRepoMock{
		insertFn: func(ctx context.Context, p *model.Payment) (int64, error) { return 1, nil },
	}
	svc := paymentsvc.New(br, pr, &midMock{}, &dokuMock{}, &recMock{})

	a, err := svc.Initiate(context.Background(), 7, initiateReq(5, model.GatewayManual))
	require.NoError(t, err)
	b, err := svc.Initiate(context.Background(), 7, initiateReq(5, model.GatewayManual))
	require.NoError(t, err)
	require.NotEqual(t, a.ExternalID, b.ExternalID)
}

func TestStatus_PullPathConverges(t *testing.T) {
	pending := &model.Payment{ID: 9, UserID: 7, Gateway: model.GatewayMidtrans, Status: model.PaymentPending, ExternalID: "ORDER-9"}
	paid := &model.Payment{ID: 9, UserID: 7, Gateway: model.GatewayMidtrans, Status: model.PaymentPaid, ExternalID: "ORDER-9"}

	reads := 0
	pr := &paymentRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Payment, error) {
			reads++
			if reads == 1 {
				return pending, nil
			}
			return paid, nil
		},
	}
	rec := &recMock{
		checkFn: func(ctx context.Context, p *model.Payment) (bool, error) { return true, nil },
	}
	svc := paymentsvc.New(&bookingRepoMock{}, pr, &midMock{}, &dokuMock{}, rec)

	p, err := svc.Status(context.Background(), 7, 9)
	require.NoError(t, err)
	require.Equal(t, model.PaymentPaid, p.Status)
}

func TestStatus_ProviderErrorReturnsLastKnown(t *testing.T) {
	pending := &model.Payment{ID: 9, UserID: 7, Gateway: model.GatewayMidtrans, Status: model.PaymentPending, ExternalID: "ORDER-9"}
	pr := &paymentRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Payment, error) { return pending, nil },
	}
	rec := &recMock{
		checkFn: func(ctx context.Context, p *model.Payment) (bool, error) {
			return false, errors.New("gateway unreachable")
		},
	}
	svc := paymentsvc.New(&bookingRepoMock{}, pr, &midMock{}, &dokuMock{}, rec)

	p, err := svc.Status(context.Background(), 7, 9)
	require.NoError(t, err)
	require.Equal(t, model.PaymentPending, p.Status)
}

func TestStatus_Rejections(t *testing.T) {
	pr := &paymentRepoMock{
		getFn: func(ctx context.Context, id int64) (*model.Payment, error) { return nil, sql.ErrNoRows },
	}
	svc := paymentsvc.New(&bookingRepoMock{}, pr, &midMock{}, &dokuMock{}, &recMock{})
	_, err := svc.Status(context.Background(), 7, 9)
	require.Equal(t, paymentsvc.ErrPaymentNotFound, paymentsvc.Code(err))

	pr.getFn = func(ctx context.Context, id int64) (*model.Payment, error) {
		return &model.Payment{ID: 9, UserID: 8, Status: model.PaymentPending}, nil
	}
	_, err = svc.Status(context.Background(), 7, 9)
	require.Equal(t, paymentsvc.ErrNotOwner, paymentsvc.Code(err))
}
