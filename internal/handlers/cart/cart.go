package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/obinnaukwu/storefront/internal/logging"
	authmw "github.com/obinnaukwu/storefront/internal/middleware/auth"
	"github.com/obinnaukwu/storefront/internal/models"
	"github.com/obinnaukwu/storefront/internal/mykafka"
	"github.com/obinnaukwu/storefront/internal/service"
)

type CartHTTP struct {
	Svc      *service.CartService
	Producer *mykafka.Producer
}

type addToCartRequest struct {
	ProductID    string  `json:"productId"    validate:"required"`
	Quantity     uint    `json:"quantity"     validate:"required,min=1"`
	ProductName  string  `json:"productName"  validate:"required"`
	ProductImage string  `json:"productImage"`
	ProductPrice float64 `json:"productPrice" validate:"gte=0"`
}

type updateQuantityRequest struct {
	Quantity uint `json:"quantity" validate:"required,min=1"`
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_add")

	userID, err := authmw.UserID(c)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 401)
		return err
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return err
	}

	item := models.CartItem{
		UserID:       userID,
		ProductID:    req.ProductID,
		ProductName:  req.ProductName,
		ProductImage: req.ProductImage,
		ProductPrice: req.ProductPrice,
		Quantity:     req.Quantity,
	}
	if err := h.Svc.AddToCart(ctx, &item); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("add_to_cart_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})

	l.Info("item added to cart", "user_id", userID, "product_id", item.ProductID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Item added to cart successfully",
		"item":    item,
	})
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_update")

	userID, err := authmw.UserID(c)
	if err != nil {
		l.Warn("update_quantity_error", "status", 401)
		return err
	}

	productID := c.Param("productId")

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_quantity_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_quantity_error", "status", 400, "error", err)
		return err
	}

	item, err := h.Svc.UpdateQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_quantity_not_found", "status", 404, "product_id", productID)
			return echo.NewHTTPError(http.StatusNotFound, "product not found in cart")
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_quantity_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("update_quantity_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	h.publish(c, map[string]any{
		"type":      "cart_quantity_updated",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})

	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) DeleteFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_delete")

	userID, err := authmw.UserID(c)
	if err != nil {
		l.Warn("delete_from_cart_error", "status", 401)
		return err
	}

	productID := c.Param("productId")

	if err := h.Svc.DeleteFromCart(ctx, userID, productID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("delete_from_cart_not_found", "status", 404, "product_id", productID)
			return echo.NewHTTPError(http.StatusNotFound, "product not found in cart")
		case errors.Is(err, service.ErrValidation):
			l.Warn("delete_from_cart_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("delete_from_cart_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_deleted",
		"userID":    userID,
		"productID": productID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product removed from cart successfully",
	})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_clear")

	userID, err := authmw.UserID(c)
	if err != nil {
		l.Warn("clear_cart_error", "status", 401)
		return err
	}

	deleted, err := h.Svc.ClearCart(ctx, userID)
	if err != nil {
		l.Error("clear_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":    "cart_cleared",
		"userID":  userID,
		"deleted": deleted,
	})

	l.Info("cart cleared", "user_id", userID, "deleted", deleted)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "All items removed from cart successfully",
		"deleted": deleted,
	})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_get")

	userID, err := authmw.UserID(c)
	if err != nil {
		l.Warn("get_cart_error", "status", 401)
		return err
	}

	view, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_cart_error", "status", 401, "reason", "unknown user")
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		l.Error("get_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) UserDetails(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_details")

	userID, err := authmw.UserID(c)
	if err != nil {
		l.Warn("user_details_error", "status", 401)
		return err
	}

	summary, err := h.Svc.UserSummary(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("user_details_error", "status", 401, "reason", "unknown user")
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		l.Error("user_details_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CartHTTP) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
