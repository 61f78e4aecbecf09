package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// msgInconsistency marks log entries that need manual reconciliation
// between the products table and object storage.
const msgInconsistency = "unresolved inconsistency"

// LifecycleConfig holds configuration for the product lifecycle service
type LifecycleConfig struct {
	// MaxUploadBytes is the largest accepted image size
	MaxUploadBytes int64
}

// DefaultLifecycleConfig returns the default configuration
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		MaxUploadBytes: 10 * 1024 * 1024,
	}
}

// ProductLifecycleService creates, updates and deletes products together
// with their image blobs. Blob and row writes are not transactional; a
// failed second step is compensated where possible and logged otherwise.
type ProductLifecycleService struct {
	repo    catalog.ProductRepository
	storage ObjectStorage
	cache   ResolutionCache
	config  LifecycleConfig
	logger  *zap.Logger
}

// NewProductLifecycleService creates a new ProductLifecycleService
func NewProductLifecycleService(
	repo catalog.ProductRepository,
	storage ObjectStorage,
	cache ResolutionCache,
	config LifecycleConfig,
	logger *zap.Logger,
) *ProductLifecycleService {
	if cache == nil {
		cache = NopResolutionCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultLifecycleConfig().MaxUploadBytes
	}
	return &ProductLifecycleService{
		repo:    repo,
		storage: storage,
		cache:   cache,
		config:  config,
		logger:  logger.Named("lifecycle"),
	}
}

// List returns every product ordered by SKU
func (s *ProductLifecycleService) List(ctx context.Context) ([]ProductListItem, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.NewDatabaseError("failed to list products", err)
	}
	return ToProductListItems(products), nil
}

// Get returns one product for the edit form
func (s *ProductLifecycleService) Get(ctx context.Context, sku string) (*ProductResponse, error) {
	if err := catalog.ValidateSKU(sku); err != nil {
		return nil, err
	}
	product, err := s.findProduct(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create stores the image at {sku}/{image_file} and then inserts the row.
// If the row write fails the image is removed again.
func (s *ProductLifecycleService) Create(ctx context.Context, in CreateProductInput) (*ProductResponse, error) {
	if err := catalog.ValidateSKU(in.SKU); err != nil {
		return nil, err
	}
	if !in.Image.present() {
		return nil, shared.NewValidationError("file is required")
	}
	if err := s.checkSize(in.Image); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(in.SKU, in.Attributes, catalog.CanonicalImageName(in.Image.FileName))
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsBySKU(ctx, in.SKU)
	if err != nil {
		return nil, shared.NewDatabaseError("failed to check product", err)
	}
	if exists {
		return nil, shared.NewConflictError(fmt.Sprintf("SKU %s already exists, use edit instead", in.SKU))
	}

	key := product.ImageKey()
	if err := s.storage.Put(ctx, key, in.Image.Data, contentTypeOf(in.Image)); err != nil {
		return nil, shared.NewStorageError("failed to store image", err)
	}

	if err := s.repo.Upsert(ctx, product); err != nil {
		s.discardBlob(ctx, in.SKU, key, err)
		return nil, shared.NewDatabaseError("failed to save product", err)
	}

	invalidate(ctx, s.cache, s.logger, key)

	s.logger.Info("product created",
		zap.String("sku", product.SKU),
		zap.String("key", key),
		zap.Int64("size", in.Image.Size),
	)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update overwrites every editable field of an existing product. With a
// new image the blob is written first, the row is updated, and the
// previous blob is removed on a best-effort basis.
func (s *ProductLifecycleService) Update(ctx context.Context, in UpdateProductInput) (*ProductResponse, error) {
	if err := catalog.ValidateSKU(in.SKU); err != nil {
		return nil, err
	}

	product, err := s.findProduct(ctx, in.SKU)
	if err != nil {
		return nil, err
	}

	previous := product.CurrentImage()
	if in.ExistingImageFile != "" && in.ExistingImageFile != previous {
		s.logger.Warn("submitted image name differs from stored image",
			zap.String("sku", in.SKU),
			zap.String("submitted", in.ExistingImageFile),
			zap.String("stored", previous),
		)
	}

	replacing := in.Image.present()
	newName := ""
	if replacing {
		if err := s.checkSize(in.Image); err != nil {
			return nil, err
		}
		newName = catalog.CanonicalImageName(in.Image.FileName)
		if err := catalog.ValidateImageName(newName); err != nil {
			return nil, err
		}
	}

	if err := product.Overwrite(in.Attributes, newName); err != nil {
		return nil, err
	}

	newKey := ""
	if replacing {
		newKey = product.ImageKey()
		if err := s.storage.Put(ctx, newKey, in.Image.Data, contentTypeOf(in.Image)); err != nil {
			return nil, shared.NewStorageError("failed to store image", err)
		}
	}

	rows, err := s.repo.Update(ctx, product)
	if err == nil && rows == 0 {
		err = shared.NewNotFoundError(fmt.Sprintf("product %s not found", in.SKU))
	}
	if err != nil {
		if replacing {
			s.rollbackReplacement(ctx, in.SKU, newKey, newName == previous, err)
		}
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		return nil, shared.NewDatabaseError("failed to update product", err)
	}

	if replacing {
		invalidate(ctx, s.cache, s.logger, newKey)
		if previous != "" && previous != newName {
			s.removePrevious(ctx, in.SKU, catalog.ImageKey(in.SKU, previous))
		}
	}

	s.logger.Info("product updated",
		zap.String("sku", in.SKU),
		zap.Bool("image_replaced", replacing),
		zap.String("key", product.ImageKey()),
	)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes the row and then every blob under {sku}/. Deleting an
// unknown SKU succeeds. A blob failure after the row is gone is logged and
// reported as a storage error.
func (s *ProductLifecycleService) Delete(ctx context.Context, sku string) error {
	if err := catalog.ValidateSKU(sku); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, sku); err != nil {
		return shared.NewDatabaseError("failed to delete product", err)
	}

	prefix := catalog.ImagePrefix(sku)
	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		s.logger.Error(msgInconsistency,
			zap.String("detail", "product row deleted but images could not be listed"),
			zap.String("sku", sku),
			zap.String("prefix", prefix),
			zap.Error(err),
		)
		return shared.NewStorageError("product deleted but images could not be listed", err)
	}

	if len(keys) > 0 {
		if err := s.storage.Delete(ctx, keys...); err != nil {
			s.logger.Error(msgInconsistency,
				zap.String("detail", "product row deleted but images remain"),
				zap.String("sku", sku),
				zap.String("prefix", prefix),
				zap.Strings("keys", keys),
				zap.Error(err),
			)
			return shared.NewStorageError("product deleted but images could not be removed", err)
		}
		invalidate(ctx, s.cache, s.logger, keys...)
	}

	s.logger.Info("product deleted", zap.String("sku", sku), zap.Int("images_removed", len(keys)))
	return nil
}

func (s *ProductLifecycleService) findProduct(ctx context.Context, sku string) (*catalog.Product, error) {
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(fmt.Sprintf("product %s not found", sku))
		}
		return nil, shared.NewDatabaseError("failed to load product", err)
	}
	return product, nil
}

func (s *ProductLifecycleService) checkSize(img *ImageUpload) error {
	if img.Size > s.config.MaxUploadBytes {
		return shared.NewPayloadTooLargeError(fmt.Sprintf(
			"file size %d bytes exceeds the %d MB limit",
			img.Size, s.config.MaxUploadBytes/(1024*1024),
		))
	}
	return nil
}

// discardBlob undoes a blob write whose row write failed
func (s *ProductLifecycleService) discardBlob(ctx context.Context, sku, key string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Error(msgInconsistency,
			zap.String("detail", "image stored without a product row"),
			zap.String("sku", sku),
			zap.String("key", key),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("removed image after failed product write",
		zap.String("sku", sku),
		zap.String("key", key),
		zap.NamedError("cause", cause),
	)
}

// rollbackReplacement handles a failed row update after the new image was
// written. An overwrite of the current key cannot be undone.
func (s *ProductLifecycleService) rollbackReplacement(ctx context.Context, sku, key string, overwrote bool, cause error) {
	if overwrote {
		invalidate(ctx, s.cache, s.logger, key)
		s.logger.Error(msgInconsistency,
			zap.String("detail", "image overwritten but product row not updated"),
			zap.String("sku", sku),
			zap.String("key", key),
			zap.NamedError("cause", cause),
		)
		return
	}
	s.discardBlob(ctx, sku, key, cause)
}

func (s *ProductLifecycleService) removePrevious(ctx context.Context, sku, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete previous image",
			zap.String("sku", sku),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	invalidate(ctx, s.cache, s.logger, key)
}

func contentTypeOf(img *ImageUpload) string {
	if img.ContentType != "" && img.ContentType != "application/octet-stream" {
		return img.ContentType
	}
	return http.DetectContentType(img.Data)
}
