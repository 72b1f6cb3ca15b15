package booking

import (
	"clinicpay/model"
	bs "clinicpay/service/booking"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/bookings
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookingReq
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

	b, err := h.Svc.Create(c.Request().Context(), uid, bs.CreateReq{
		SlotID:      req.SlotID,
		Type:        model.BookingType(req.Type),
		TotalAmount: req.TotalAmount,
		Notes:       req.Notes,
	})
	if err != nil {
		h.Log.Error("booking create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"data": b})
}

// GET /v1/bookings/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Get(c.Request().Context(), uid, id)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
		case bs.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("booking detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}
