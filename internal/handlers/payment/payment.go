package payment

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obinnaukwu/storefront/internal/logging"
	"github.com/obinnaukwu/storefront/internal/paystack"
)

type PaymentHTTP struct {
	Gateway *paystack.Client
}

type acceptPaymentRequest struct {
	Email  string  `json:"email"  validate:"required,email"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// AcceptPayment hands the checkout off to the gateway and relays its
// response. A failed initialization is reported once, never retried.
func (h *PaymentHTTP) AcceptPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "accept_payment")

	var req acceptPaymentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("accept_payment_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("accept_payment_error", "status", 400, "error", err)
		return err
	}

	resp, err := h.Gateway.Initialize(ctx, req.Email, req.Amount)
	if err != nil {
		var gErr *paystack.GatewayError
		if errors.As(err, &gErr) {
			l.Error("accept_payment_gateway_error", "status", 500, "gateway_status", gErr.StatusCode, "error", err)
		} else {
			l.Error("accept_payment_error", "status", 500, "error", err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred")
	}

	l.Info("payment initialized", "email", req.Email)
	return c.JSON(http.StatusOK, resp)
}
