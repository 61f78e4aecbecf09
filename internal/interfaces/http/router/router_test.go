package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	mediaapp "github.com/catalogadmin/backend/internal/application/media"
	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/catalogadmin/backend/internal/domain/media"
	"github.com/catalogadmin/backend/internal/infrastructure/persistence"
	"github.com/catalogadmin/backend/internal/infrastructure/storage"
	"github.com/catalogadmin/backend/internal/interfaces/http/handler"
	"github.com/catalogadmin/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Empty(t, r.registrars)
	assert.Nil(t, r.fallback)
}

func TestRouterOptions(t *testing.T) {
	r := NewRouter(gin.New(), WithMiddleware(ok("a"), ok("b")), WithFallback(ok("f")))

	assert.Len(t, r.middleware, 2)
	assert.NotNil(t, r.fallback)
}

func TestRouterSetup(t *testing.T) {
	deny := func(c *gin.Context) {
		if c.GetHeader("X-Key") != "letmein" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}

	engine := gin.New()
	NewRouter(engine, WithMiddleware(deny), WithFallback(ok("fallback"))).
		RegisterPublic(NewDomainGroup("/health").GET("", ok("healthy"))).
		Register(NewDomainGroup("/test").GET("/ping", ok("pong"))).
		Setup()

	t.Run("public routes skip middleware", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", w.Body.String())
	})

	t.Run("protected routes run middleware", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/test/ping").Code)

		req := httptest.NewRequest(http.MethodGet, "/test/ping", nil)
		req.Header.Set("X-Key", "letmein")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("fallback runs middleware", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/ABC-1/a.jpg").Code)

		req := httptest.NewRequest(http.MethodGet, "/ABC-1/a.jpg", nil)
		req.Header.Set("X-Key", "letmein")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, "fallback", w.Body.String())
	})
}

func TestDomainGroup(t *testing.T) {
	t.Run("registers GET and POST routes", func(t *testing.T) {
		engine := gin.New()
		NewDomainGroup("/products").
			GET("", ok("list")).
			POST("/:sku", ok("update")).
			RegisterRoutes(engine.Group("/"))

		assert.Equal(t, "list", serve(engine, http.MethodGet, "/products").Body.String())
		assert.Equal(t, "update", serve(engine, http.MethodPost, "/products/ABC-1").Body.String())
	})

	t.Run("subgroups nest under the parent prefix", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("/products")
		g.Group("/:sku").
			GET("", ok("get")).
			GET("/delete", ok("delete"))
		g.RegisterRoutes(engine.Group("/"))

		assert.Equal(t, "get", serve(engine, http.MethodGet, "/products/ABC-1").Body.String())
		assert.Equal(t, "delete", serve(engine, http.MethodGet, "/products/ABC-1/delete").Body.String())
	})
}

func TestSetupRoutes(t *testing.T) {
	require.NoError(t, middleware.SetupValidator())
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Product{}, &media.Item{}))

	logger := zaptest.NewLogger(t)
	blobs := storage.NewInMemoryObjectStorage()
	products := catalogapp.NewProductLifecycleService(persistence.NewGormProductRepository(db), blobs, nil,
		catalogapp.DefaultLifecycleConfig(), logger)
	resolver := catalogapp.NewImageResolver(blobs, nil, logger)
	mediaSvc := mediaapp.NewService(persistence.NewGormMediaRepository(db), blobs, nil, logger)

	engine := gin.New()
	SetupRoutes(engine, Handlers{
		Product: handler.NewProductHandler(products, "/"),
		Media:   handler.NewMediaHandler(mediaSvc),
		Image:   handler.NewImageHandler(resolver, ""),
		System:  handler.NewSystemHandler("catalog-admin", persistence.NewDatabaseFromGorm(db)),
		Docs:    ok("docs"),
	}, middleware.BasicAuth("admin", "s3cret"))

	authed := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		req.SetBasicAuth("admin", "s3cret")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("health is public", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	})

	t.Run("admin routes require credentials", func(t *testing.T) {
		for _, target := range []string{"/products", "/media", "/system/info", "/swagger/index.html", "/ABC-1/a.jpg"} {
			assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, target).Code, target)
		}
	})

	t.Run("product routes are wired", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, authed(http.MethodGet, "/products").Code)
		assert.Equal(t, http.StatusNotFound, authed(http.MethodGet, "/products/ABC-1").Code)
		assert.Equal(t, http.StatusSeeOther, authed(http.MethodGet, "/products/ABC-1/delete").Code)
	})

	t.Run("docs are served behind auth", func(t *testing.T) {
		w := authed(http.MethodGet, "/swagger/index.html")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "docs", w.Body.String())
	})

	t.Run("media routes are wired", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, authed(http.MethodGet, "/media").Code)
		assert.Equal(t, http.StatusBadRequest, authed(http.MethodPost, "/delete-images").Code)
	})

	t.Run("other paths resolve images", func(t *testing.T) {
		require.NoError(t, blobs.Put(ctx, "ABC-1/Front_Photo.jpg", []byte("img"), "image/jpeg"))

		w := authed(http.MethodGet, "/ABC-1/Front_Photo.jpg")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "img", w.Body.String())

		assert.Equal(t, http.StatusNotFound, authed(http.MethodGet, "/ABC-1/missing.jpg").Code)
	})
}
