package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printyshop/printy/internal/authctx"
)

type Deps struct {
	ProductHandler  *ProductHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	SearchHandler   *SearchHandler
	Auth            *authctx.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	co := v1.Group("/checkout", d.Auth.Attribute)
	co.POST("", d.CheckoutHandler.CreateSession)
	co.GET("/:id", d.CheckoutHandler.GetSession)
	co.DELETE("/:id", d.CheckoutHandler.AbandonSession)
	co.POST("/:id/color", d.CheckoutHandler.SelectColor)
	co.POST("/:id/size", d.CheckoutHandler.SelectSize)
	co.POST("/:id/quantity", d.CheckoutHandler.AdjustQuantity)
	co.POST("/:id/placement", d.CheckoutHandler.AdjustPlacement)
	co.POST("/:id/scale", d.CheckoutHandler.AdjustScale)
	co.POST("/:id/instructions", d.CheckoutHandler.SetInstructions)
	co.POST("/:id/design", d.CheckoutHandler.UploadDesign)
	co.POST("/:id/proceed", d.CheckoutHandler.Proceed)
	co.POST("/:id/customer", d.CheckoutHandler.SubmitCustomer)
	co.POST("/:id/pay", d.CheckoutHandler.StartPayment)
	co.POST("/:id/payment/callback", d.CheckoutHandler.PaymentCallback)
	co.POST("/:id/payment/cancel", d.CheckoutHandler.CancelPayment)

	admin := v1.Group("/admin", d.Auth.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.GET("/orders/:id", d.OrderHandler.GetOrder)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.PATCH("/orders/:id/payment-status", d.OrderHandler.UpdatePaymentStatus)
}
