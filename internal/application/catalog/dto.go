package catalog

import (
	"time"

	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ImageUpload is an uploaded image file as read from the multipart form
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// present reports whether a non-empty file was submitted
func (u *ImageUpload) present() bool {
	return u != nil && u.Size > 0
}

// CreateProductInput is a parsed create form
type CreateProductInput struct {
	SKU        string
	Attributes catalog.Attributes
	Image      *ImageUpload
}

// UpdateProductInput is a parsed edit form. ExistingImageFile echoes the
// image name the form was rendered with.
type UpdateProductInput struct {
	SKU               string
	Attributes        catalog.Attributes
	ExistingImageFile string
	Image             *ImageUpload
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	SKU          string           `json:"sku"`
	Title        string           `json:"title"`
	TitleEN      string           `json:"title_en"`
	Brand        string           `json:"brand"`
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	Materials    string           `json:"materials"`
	ImageFile    string           `json:"image_file"`
	ImageURL     string           `json:"image_url"`
	CasePackSize *int             `json:"case_pack_size"`
	MSRP         *decimal.Decimal `json:"msrp"`
	Barcode      string           `json:"barcode"`
	DimensionsCM string           `json:"dimensions_cm"`
	WeightG      *decimal.Decimal `json:"weight_g"`
	Origin       string           `json:"origin"`
	InStock      string           `json:"in_stock"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProductListItem is a row of the product list page
type ProductListItem struct {
	SKU       string `json:"sku"`
	Title     string `json:"title"`
	Brand     string `json:"brand"`
	Category  string `json:"category"`
	ImageFile string `json:"image_file"`
	ImageURL  string `json:"image_url"`
	InStock   string `json:"in_stock"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		SKU:          p.SKU,
		Title:        p.Title,
		TitleEN:      p.TitleEN,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Materials:    p.Materials,
		ImageFile:    p.CurrentImage(),
		ImageURL:     p.ImageURL(),
		CasePackSize: p.CasePackSize,
		MSRP:         nullDecimalPtr(p.MSRP),
		Barcode:      p.Barcode,
		DimensionsCM: p.DimensionsCM,
		WeightG:      nullDecimalPtr(p.WeightG),
		Origin:       p.Origin,
		InStock:      string(p.InStock),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductListItems converts domain Products to list rows
func ToProductListItems(products []catalog.Product) []ProductListItem {
	items := make([]ProductListItem, len(products))
	for i := range products {
		p := &products[i]
		items[i] = ProductListItem{
			SKU:       p.SKU,
			Title:     p.Title,
			Brand:     p.Brand,
			Category:  p.Category,
			ImageFile: p.CurrentImage(),
			ImageURL:  p.ImageURL(),
			InStock:   string(p.InStock),
		}
	}
	return items
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
