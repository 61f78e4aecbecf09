package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ExistsBySKU checks if a product with the given SKU exists
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("sku = ?", sku).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns every product ordered by SKU
func (r *GormProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Order("sku ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Upsert inserts the product, overwriting every column when the SKU exists
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			UpdateAll: true,
		}).
		Create(product).Error
}

// Update overwrites every editable column, including empty values
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) (int64, error) {
	product.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("sku = ?", product.SKU).
		Updates(map[string]any{
			"title":          product.Title,
			"title_en":       product.TitleEN,
			"brand":          product.Brand,
			"category":       product.Category,
			"description":    product.Description,
			"materials":      product.Materials,
			"image_file":     product.ImageFile,
			"case_pack_size": product.CasePackSize,
			"msrp":           product.MSRP,
			"barcode":        product.Barcode,
			"dimensions_cm":  product.DimensionsCM,
			"weight_g":       product.WeightG,
			"origin":         product.Origin,
			"in_stock":       product.InStock,
			"updated_at":     product.UpdatedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete removes a product by SKU; a missing row is not an error
func (r *GormProductRepository) Delete(ctx context.Context, sku string) error {
	return r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Delete(&catalog.Product{}).Error
}
