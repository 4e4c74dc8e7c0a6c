package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	Orders     *OrderHTTP
	Statuses   *StatusHTTP
	OrderItems *OrderItemHTTP
	Catalog    *CatalogHTTP
	Auth       *AuthHTTP
	Users      *UserHTTP

	AuthMW *middleware.AuthMiddleware
	Ready  func(ctx context.Context) error

	// UploadDir is served under /uploads when set.
	UploadDir string
}

// uploads are capped a little above the image limit to leave room for the
// multipart framing.
const uploadBodyLimit = "6M"

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return respond(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	authn := d.AuthMW.RequireAuth
	admin := d.AuthMW.RequireAdmin

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.GET("/me", d.Auth.Me, authn)
	auth.POST("/logout", d.Auth.Logout, authn)

	users := api.Group("/users", authn)
	users.GET("", d.Users.ListUsers)
	users.GET("/:id", d.Users.GetUser)
	users.POST("", d.Users.CreateUser)
	users.PUT("/:id", d.Users.UpdateUser)
	users.DELETE("/:id", d.Users.DeleteUser)

	statuses := api.Group("/statuses")
	statuses.GET("", d.Statuses.ListStatuses)
	statuses.GET("/:id", d.Statuses.GetStatus)
	statuses.POST("", d.Statuses.CreateStatus, admin)
	statuses.PUT("/:id", d.Statuses.RenameStatus, admin)
	statuses.DELETE("/:id", d.Statuses.DeleteStatus, admin)

	orders := api.Group("/orders")
	orders.GET("", d.Orders.ListOrders, authn)
	orders.POST("", d.Orders.CreateOrder, authn)
	orders.GET("/export", d.Orders.ExportOrders, admin)
	orders.GET("/feed", d.Orders.Feed, admin)
	orders.GET("/:id", d.Orders.GetOrder, authn)
	orders.PUT("/:id", d.Orders.UpdateOrder, admin)
	orders.PATCH("/:id/cancel", d.Orders.CancelOrder, authn)
	orders.DELETE("/:id", d.Orders.DeleteOrder, admin)

	items := api.Group("/order-items", admin)
	items.GET("", d.OrderItems.ListItems)
	items.GET("/:id", d.OrderItems.GetItem)
	items.POST("", d.OrderItems.CreateItem)
	items.PUT("/:id", d.OrderItems.UpdateItem)
	items.DELETE("/:id", d.OrderItems.DeleteItem)

	categories := api.Group("/categories")
	categories.GET("", d.Catalog.ListCategories)
	categories.GET("/:id", d.Catalog.GetCategory)
	categories.POST("", d.Catalog.CreateCategory, admin)
	categories.PUT("/:id", d.Catalog.UpdateCategory, admin)
	categories.DELETE("/:id", d.Catalog.DeleteCategory, admin)

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, admin)
	products.POST("/upload", d.Catalog.UploadImage, admin, echomw.BodyLimit(uploadBodyLimit))
	products.PUT("/:id", d.Catalog.UpdateProduct, admin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, admin)
}
