package payment

import (
	"clinicpay/model"
	ps "clinicpay/service/payment"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ps.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/payments
// @Summary Initiate a payment for a booking
// @Success 201 {object} map[string]any
// @Failure 400,402,404,409,500
func (h *Controller) Initiate(c echo.Context) error {
	var req InitiatePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Initiate(c.Request().Context(), uid, ps.InitiateReq{
		BookingID:  req.BookingID,
		Gateway:    model.PaymentGateway(req.Gateway),
		Method:     req.Method,
		PayerEmail: req.PayerEmail,
		PayerPhone: req.PayerPhone,
	})
	if err != nil {
		switch ps.Code(err) {
		case ps.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
		case ps.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case ps.ErrBookingNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"message": "booking is not payable"})
		case ps.ErrPendingExists:
			return c.JSON(http.StatusConflict, echo.Map{"message": "a pending payment already exists for this booking"})
		case ps.ErrGatewayUnavailable:
			h.Log.Error("payment initiate: gateway", "err", err)
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment processing failed, please retry"})
		default:
			h.Log.Error("payment initiate", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"payment_id":   out.PaymentID,
		"external_id":  out.ExternalID,
		"status":       out.Status,
		"redirect_url": out.RedirectURL,
	})
}

// GET /v1/payments/:id/status
func (h *Controller) Status(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	p, err := h.Svc.Status(c.Request().Context(), uid, id)
	if err != nil {
		switch ps.Code(err) {
		case ps.ErrPaymentNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case ps.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("payment status", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}
