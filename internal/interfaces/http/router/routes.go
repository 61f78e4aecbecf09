package router

import (
	"github.com/catalogadmin/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers of the admin service
type Handlers struct {
	Product *handler.ProductHandler
	Media   *handler.MediaHandler
	Image   *handler.ImageHandler
	System  *handler.SystemHandler
	// Docs serves the API documentation under /swagger; nil leaves it unmounted.
	Docs gin.HandlerFunc
}

// SetupRoutes registers the admin routes on engine. auth, when non-nil,
// guards everything except the health check.
func SetupRoutes(engine *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	opts := []RouterOption{WithFallback(h.Image.Serve)}
	if auth != nil {
		opts = append(opts, WithMiddleware(auth))
	}
	r := NewRouter(engine, opts...)

	r.RegisterPublic(NewDomainGroup("/health").
		GET("", h.System.Health))

	r.Register(NewDomainGroup("/system").
		GET("/info", h.System.GetSystemInfo))

	products := NewDomainGroup("/products").
		GET("", h.Product.List).
		POST("", h.Product.Create)
	products.Group("/:sku").
		GET("", h.Product.Get).
		POST("", h.Product.Update).
		GET("/delete", h.Product.Delete)
	r.Register(products)

	r.Register(NewDomainGroup("").
		GET("/media", h.Media.List).
		POST("/delete-images", h.Media.Delete))

	if h.Docs != nil {
		r.Register(NewDomainGroup("/swagger").
			GET("/*any", h.Docs))
	}

	r.Setup()
}
