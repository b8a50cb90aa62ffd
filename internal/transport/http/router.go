package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minjukim/wishmall/internal/handlers"
	"github.com/minjukim/wishmall/internal/handlers/cart"
	"github.com/minjukim/wishmall/internal/service"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	ItemHandler    *handlers.ItemHandler
	CartHandler    *cart.CartHandler
	OrderHandler   *handlers.OrderHandler
	SearchHandler  *handlers.SearchHandler
	ServiceHandler *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	// Catalog reads are public; writes require a session.
	v1.GET("/items", d.ItemHandler.ListItems)
	v1.GET("/items/:id", d.ItemHandler.GetItem)

	items := v1.Group("/items", d.ServiceHandler.AutoRefreshMiddleware)
	items.POST("", d.ItemHandler.CreateItem)
	items.PATCH("/:id", d.ItemHandler.PatchItem)
	items.PUT("/:id", d.ItemHandler.PatchItem)
	items.DELETE("/:id", d.ItemHandler.DeleteItem)

	cartGroup := v1.Group("/cart", d.ServiceHandler.AutoRefreshMiddleware)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.PUT("/:id", d.CartHandler.SetQuantity)
	cartGroup.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cartGroup.DELETE("", d.CartHandler.ClearCart)

	orders := v1.Group("/orders", d.ServiceHandler.AutoRefreshMiddleware)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder)
}
