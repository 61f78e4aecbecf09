package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/catalogadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockFlag is the Y/N availability marker shown on the list page
type StockFlag string

const (
	InStock    StockFlag = "Y"
	OutOfStock StockFlag = "N"
)

// ParseStockFlag accepts Y/N in any case; empty means out of stock
func ParseStockFlag(s string) (StockFlag, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y":
		return InStock, nil
	case "", "N":
		return OutOfStock, nil
	default:
		return "", shared.NewValidationError("in_stock must be Y or N")
	}
}

// Product is a catalog entry keyed by SKU. ImageFile holds the canonical
// leaf name of the product image, stored under {sku}/{image_file}.
type Product struct {
	SKU          string              `gorm:"column:sku;type:varchar(50);primaryKey"`
	Title        string              `gorm:"type:varchar(300);not null"`
	TitleEN      string              `gorm:"column:title_en;type:varchar(300)"`
	Brand        string              `gorm:"type:varchar(100)"`
	Category     string              `gorm:"type:varchar(100)"`
	Description  string              `gorm:"type:text"`
	Materials    string              `gorm:"type:text"`
	ImageFile    *string             `gorm:"column:image_file;type:varchar(255)"`
	CasePackSize *int                `gorm:"column:case_pack_size"`
	MSRP         decimal.NullDecimal `gorm:"column:msrp;type:decimal(12,2)"`
	Barcode      string              `gorm:"type:varchar(50)"`
	DimensionsCM string              `gorm:"column:dimensions_cm;type:varchar(100)"`
	WeightG      decimal.NullDecimal `gorm:"column:weight_g;type:decimal(12,2)"`
	Origin       string              `gorm:"type:varchar(100)"`
	InStock      StockFlag           `gorm:"column:in_stock;type:varchar(1);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Attributes are the editable, non-image fields of a product
type Attributes struct {
	Title        string
	TitleEN      string
	Brand        string
	Category     string
	Description  string
	Materials    string
	CasePackSize *int
	MSRP         decimal.NullDecimal
	Barcode      string
	DimensionsCM string
	WeightG      decimal.NullDecimal
	Origin       string
	InStock      StockFlag
}

// NewProduct creates a product whose image lives at {sku}/{imageFile}
func NewProduct(sku string, attrs Attributes, imageFile string) (*Product, error) {
	if err := ValidateSKU(sku); err != nil {
		return nil, err
	}
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateImageName(imageFile); err != nil {
		return nil, err
	}

	p := &Product{SKU: sku}
	p.apply(attrs)
	p.ImageFile = &imageFile
	return p, nil
}

// Validate checks the editable fields
func (a Attributes) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return shared.NewValidationError("title is required")
	}
	if utf8.RuneCountInString(a.Title) > 300 {
		return shared.NewValidationError("title cannot exceed 300 characters")
	}
	if a.CasePackSize != nil && *a.CasePackSize < 0 {
		return shared.NewValidationError("case_pack_size cannot be negative")
	}
	if a.MSRP.Valid && a.MSRP.Decimal.IsNegative() {
		return shared.NewValidationError("msrp cannot be negative")
	}
	if a.WeightG.Valid && a.WeightG.Decimal.IsNegative() {
		return shared.NewValidationError("weight_g cannot be negative")
	}
	switch a.InStock {
	case InStock, OutOfStock, "":
	default:
		return shared.NewValidationError("in_stock must be Y or N")
	}
	return nil
}

// Overwrite replaces every editable field. The image name is kept unless
// imageFile is non-empty.
func (p *Product) Overwrite(attrs Attributes, imageFile string) error {
	if err := attrs.Validate(); err != nil {
		return err
	}
	if imageFile != "" {
		if err := ValidateImageName(imageFile); err != nil {
			return err
		}
		p.ImageFile = &imageFile
	}
	p.apply(attrs)
	return nil
}

func (p *Product) apply(a Attributes) {
	p.Title = a.Title
	p.TitleEN = a.TitleEN
	p.Brand = a.Brand
	p.Category = a.Category
	p.Description = a.Description
	p.Materials = a.Materials
	p.CasePackSize = a.CasePackSize
	p.MSRP = a.MSRP
	p.Barcode = a.Barcode
	p.DimensionsCM = a.DimensionsCM
	p.WeightG = a.WeightG
	p.Origin = a.Origin
	p.InStock = a.InStock
	if p.InStock == "" {
		p.InStock = OutOfStock
	}
}

// CurrentImage returns the stored image name, or "" when none is linked
func (p *Product) CurrentImage() string {
	if p.ImageFile == nil {
		return ""
	}
	return *p.ImageFile
}

// ImageKey returns the storage key of the product image, or "" when none is linked
func (p *Product) ImageKey() string {
	if p.ImageFile == nil || *p.ImageFile == "" {
		return ""
	}
	return ImageKey(p.SKU, *p.ImageFile)
}

// ImageURL returns the display link for the product image
func (p *Product) ImageURL() string {
	return ImageURL(p.SKU, p.CurrentImage())
}
