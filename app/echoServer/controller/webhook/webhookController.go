package webhook

import (
	rec "clinicpay/service/reconcile"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rec.Service
	Log *slog.Logger
}

// POST /v1/payments/midtrans/notify
func (h *Controller) HandleMidtrans(c echo.Context) error {
	return h.handle(c, h.Svc.HandleMidtrans)
}

// POST /v1/payments/doku/notify
func (h *Controller) HandleDoku(c echo.Context) error {
	return h.handle(c, h.Svc.HandleDoku)
}

func (h *Controller) handle(c echo.Context, fn func(ctx context.Context, raw []byte) error) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}

	if err := fn(c.Request().Context(), raw); err != nil {
		switch rec.Code(err) {
		case rec.ErrBadSignature:
			h.Log.Warn("notification rejected: bad signature", "ip", c.RealIP())
			return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid signature"})
		case rec.ErrUnknownOrder:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "unknown order"})
		case rec.ErrBadPayload:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid notification"})
		default:
			h.Log.Error("notification handling failed", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	// always acknowledge once authenticated and processed, so the provider
	// does not retry-storm us over statuses we chose not to apply
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
