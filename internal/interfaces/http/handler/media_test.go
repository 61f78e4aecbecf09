package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mediaapp "github.com/catalogadmin/backend/internal/application/media"
	"github.com/catalogadmin/backend/internal/domain/media"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"github.com/catalogadmin/backend/internal/infrastructure/persistence"
	"github.com/catalogadmin/backend/internal/infrastructure/storage"
	"github.com/catalogadmin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMediaRouter(t *testing.T) (*gin.Engine, *gorm.DB, *storage.InMemoryObjectStorage) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&media.Item{}))

	blobs := storage.NewInMemoryObjectStorage()
	service := mediaapp.NewService(persistence.NewGormMediaRepository(db), blobs, nil, zaptest.NewLogger(t))
	h := NewMediaHandler(service)

	r := gin.New()
	r.GET("/media", h.List)
	r.POST("/delete-images", h.Delete)
	return r, db, blobs
}

func TestMediaHandler(t *testing.T) {
	ctx := context.Background()
	r, db, blobs := setupMediaRouter(t)

	require.NoError(t, db.Create(&[]media.Item{
		{URL: "https://img.example.com/1700000000000.jpg", Brand: "Acme", Category: "toys"},
		{URL: "https://img.example.com/1700000000500.png"},
	}).Error)
	require.NoError(t, blobs.Put(ctx, "1700000000000", []byte("a"), "image/jpeg"))
	require.NoError(t, blobs.Put(ctx, "1700000000500", []byte("b"), "image/png"))

	t.Run("list is newest first", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media", nil))
		require.Equal(t, http.StatusOK, w.Code)

		items := decodeResponse(t, w).Data.([]any)
		require.Len(t, items, 2)
		assert.Equal(t, "https://img.example.com/1700000000500.png", items[0].(map[string]any)["url"])
		assert.Equal(t, "png", items[0].(map[string]any)["type"])
	})

	t.Run("non-array body is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete-images", strings.NewReader(`{"url":"x"}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})

	t.Run("empty array is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete-images", strings.NewReader(`[]`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("deletes rows and blobs", func(t *testing.T) {
		body := `["https://img.example.com/1700000000000.jpg"]`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete-images", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, float64(1), data["deleted"])

		_, found, err := blobs.Get(ctx, "1700000000000")
		require.NoError(t, err)
		assert.False(t, found)

		var count int64
		require.NoError(t, db.Model(&media.Item{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
