package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obinnaukwu/storefront/internal/handlers"
	"github.com/obinnaukwu/storefront/internal/handlers/auth"
	"github.com/obinnaukwu/storefront/internal/handlers/cart"
	"github.com/obinnaukwu/storefront/internal/handlers/payment"
	authmw "github.com/obinnaukwu/storefront/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *auth.AuthHandler
	CartHandler    *cart.CartHTTP
	PaymentHandler *payment.PaymentHTTP
	ProductHandler *handlers.ProductHandler
	SearchHandler  *handlers.SearchHandler
	AuthMW         *authmw.BearerMiddleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/signup", d.AuthHandler.Signup)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout, d.AuthMW.RequireAuth)

	e.POST("/cart/add", d.CartHandler.AddToCart, d.AuthMW.RequireAuth)
	e.PATCH("/cart/update/:productId", d.CartHandler.UpdateQuantity, d.AuthMW.RequireAuth)
	e.DELETE("/cart/:productId", d.CartHandler.DeleteFromCart, d.AuthMW.RequireAuth)
	e.DELETE("/cart", d.CartHandler.ClearCart, d.AuthMW.RequireAuth)
	e.GET("/cart", d.CartHandler.GetCart, d.AuthMW.RequireAuth)
	e.GET("/user-details", d.CartHandler.UserDetails, d.AuthMW.RequireAuth)

	e.POST("/acceptpayment", d.PaymentHandler.AcceptPayment)

	e.GET("/products", d.ProductHandler.GetProducts)
	e.GET("/products/:id", d.ProductHandler.GetProduct)
	e.POST("/products", d.ProductHandler.CreateProduct, d.AuthMW.RequireAdmin)

	e.GET("/search", d.SearchHandler.Search)
}
