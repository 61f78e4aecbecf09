package catalog_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"github.com/catalogadmin/backend/internal/infrastructure/cache"
	"github.com/catalogadmin/backend/internal/infrastructure/persistence"
	"github.com/catalogadmin/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scenario struct {
	repo     *persistence.GormProductRepository
	blobs    *storage.InMemoryObjectStorage
	service  *catalogapp.ProductLifecycleService
	resolver *catalogapp.ImageResolver
}

func newScenario(t *testing.T) *scenario {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Product{}))

	repo := persistence.NewGormProductRepository(db)
	blobs := storage.NewInMemoryObjectStorage()
	logger := zaptest.NewLogger(t)

	lookups := cache.NewInMemoryResolutionCache(10*time.Minute, time.Minute)
	t.Cleanup(func() { _ = lookups.Close() })

	return &scenario{
		repo:     repo,
		blobs:    blobs,
		service:  catalogapp.NewProductLifecycleService(repo, blobs, lookups, catalogapp.DefaultLifecycleConfig(), logger),
		resolver: catalogapp.NewImageResolver(blobs, lookups, logger),
	}
}

func jpeg(name string, size int) *catalogapp.ImageUpload {
	data := bytes.Repeat([]byte{0xFF}, size)
	return &catalogapp.ImageUpload{FileName: name, ContentType: "image/jpeg", Size: int64(size), Data: data}
}

func TestProductLifecycle_Scenario(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	// create with a 2 MiB image
	created, err := s.service.Create(ctx, catalogapp.CreateProductInput{
		SKU:        "ABC-1",
		Attributes: catalog.Attributes{Title: "Cat Tree"},
		Image:      jpeg("Front Photo.jpg", 2*1024*1024),
	})
	require.NoError(t, err)
	assert.Equal(t, "Front_Photo.jpg", created.ImageFile)

	obj, found, err := s.blobs.Get(ctx, "ABC-1/Front_Photo.jpg")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2*1024*1024), obj.Size)

	row, err := s.repo.FindBySKU(ctx, "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "Front_Photo.jpg", row.CurrentImage())

	// second create conflicts and leaves the original alone
	_, err = s.service.Create(ctx, catalogapp.CreateProductInput{
		SKU:        "ABC-1",
		Attributes: catalog.Attributes{Title: "Other"},
		Image:      jpeg("Other.jpg", 10),
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Equal(t, 1, s.blobs.Len())
	row, err = s.repo.FindBySKU(ctx, "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "Cat Tree", row.Title)

	// update without a file keeps the image
	updated, err := s.service.Update(ctx, catalogapp.UpdateProductInput{
		SKU:               "ABC-1",
		Attributes:        catalog.Attributes{Title: "New Title"},
		ExistingImageFile: "Front_Photo.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "Front_Photo.jpg", updated.ImageFile)
	assert.Equal(t, 1, s.blobs.Len())

	row, err = s.repo.FindBySKU(ctx, "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "New Title", row.Title)
	assert.Equal(t, "Front_Photo.jpg", row.CurrentImage())

	// delete removes the row and every blob under the prefix
	require.NoError(t, s.service.Delete(ctx, "ABC-1"))

	_, err = s.repo.FindBySKU(ctx, "ABC-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	keys, err := s.blobs.List(ctx, "ABC-1/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestProductLifecycle_ReplaceImage(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	_, err := s.service.Create(ctx, catalogapp.CreateProductInput{
		SKU:        "ABC-1",
		Attributes: catalog.Attributes{Title: "Cat Tree"},
		Image:      jpeg("Front Photo.jpg", 16),
	})
	require.NoError(t, err)

	_, err = s.service.Update(ctx, catalogapp.UpdateProductInput{
		SKU:               "ABC-1",
		Attributes:        catalog.Attributes{Title: "Cat Tree"},
		ExistingImageFile: "Front_Photo.jpg",
		Image:             jpeg("side view.jpg", 32),
	})
	require.NoError(t, err)

	keys, err := s.blobs.List(ctx, "ABC-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC-1/side_view.jpg"}, keys)

	row, err := s.repo.FindBySKU(ctx, "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "side_view.jpg", row.CurrentImage())

	res, err := s.resolver.Resolve(ctx, row.ImageURL())
	require.NoError(t, err)
	assert.Equal(t, catalogapp.SourceProduct, res.Source)
	assert.Len(t, res.Data, 32)

	_, err = s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductLifecycle_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	for _, sku := range []string{"ABC-1", "ABC-10"} {
		_, err := s.service.Create(ctx, catalogapp.CreateProductInput{
			SKU:        sku,
			Attributes: catalog.Attributes{Title: sku},
			Image:      jpeg("a.jpg", 8),
		})
		require.NoError(t, err)
	}

	require.NoError(t, s.service.Delete(ctx, "ABC-1"))

	_, found, err := s.blobs.Get(ctx, "ABC-10/a.jpg")
	require.NoError(t, err)
	assert.True(t, found)
	_, err = s.repo.FindBySKU(ctx, "ABC-10")
	assert.NoError(t, err)
}

func TestImageResolver_LegacyLayout(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	require.NoError(t, s.blobs.Put(ctx, "1700000000000", []byte("legacy"), "image/png"))
	require.NoError(t, s.blobs.Put(ctx, "ABC-1/Front_Photo.jpg", []byte("new"), "image/jpeg"))

	res, err := s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, catalogapp.SourceProduct, res.Source)

	res, err = s.resolver.Resolve(ctx, "/1700000000000.png")
	require.NoError(t, err)
	assert.Equal(t, catalogapp.SourceLegacy, res.Source)
	assert.Equal(t, []byte("legacy"), res.Data)
	assert.Equal(t, "image/png", res.ContentType)

	_, err = s.resolver.Resolve(ctx, "/nothing-here.jpg")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductLifecycle_CachedLookupsFollowWrites(t *testing.T) {
	ctx := context.Background()
	s := newScenario(t)

	// misses are cached before the product exists
	_, err := s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg.png")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = s.service.Create(ctx, catalogapp.CreateProductInput{
		SKU:        "ABC-1",
		Attributes: catalog.Attributes{Title: "Cat Tree"},
		Image:      jpeg("Front Photo.jpg", 16),
	})
	require.NoError(t, err)

	res, err := s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, catalogapp.SourceProduct, res.Source)

	// an alias reaches the product blob through the legacy fallback
	res, err = s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg.png")
	require.NoError(t, err)
	assert.Equal(t, catalogapp.SourceLegacy, res.Source)
	assert.Equal(t, "ABC-1/Front_Photo.jpg", res.Key)

	// replacing the image stops both paths from serving the old blob
	_, err = s.service.Update(ctx, catalogapp.UpdateProductInput{
		SKU:        "ABC-1",
		Attributes: catalog.Attributes{Title: "Cat Tree"},
		Image:      jpeg("side view.jpg", 32),
	})
	require.NoError(t, err)

	_, err = s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg.png")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = s.resolver.Resolve(ctx, "/ABC-1/Front_Photo.jpg")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	res, err = s.resolver.Resolve(ctx, "/ABC-1/side_view.jpg.webp")
	require.NoError(t, err)
	assert.Len(t, res.Data, 32)

	require.NoError(t, s.service.Delete(ctx, "ABC-1"))

	keys, err := s.blobs.List(ctx, "ABC-1/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = s.resolver.Resolve(ctx, "/ABC-1/side_view.jpg.webp")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = s.resolver.Resolve(ctx, "/ABC-1/side_view.jpg")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
