package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	"github.com/catalogadmin/backend/internal/domain/catalog"
	"github.com/catalogadmin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// imageFormField is the multipart field carrying the product image
const imageFormField = "file"

// productForm is the multipart body of the create and edit forms.
// Numeric fields arrive as text and are parsed by attributes().
type productForm struct {
	SKU               string `form:"sku" binding:"omitempty,sku"`
	Title             string `form:"title" binding:"required,max=300"`
	TitleEN           string `form:"title_en" binding:"max=300"`
	Brand             string `form:"brand" binding:"max=100"`
	Category          string `form:"category" binding:"max=100"`
	Description       string `form:"description"`
	Materials         string `form:"materials"`
	CasePackSize      string `form:"case_pack_size"`
	MSRP              string `form:"msrp"`
	Barcode           string `form:"barcode" binding:"max=50"`
	DimensionsCM      string `form:"dimensions_cm" binding:"max=100"`
	WeightG           string `form:"weight_g"`
	Origin            string `form:"origin" binding:"max=100"`
	InStock           string `form:"in_stock"`
	ExistingImageFile string `form:"existing_image_file"`
}

// attributes converts the form into catalog attributes. Every field that
// fails to parse is reported, not just the first.
func (f *productForm) attributes() (catalog.Attributes, []dto.ValidationDetail) {
	var details []dto.ValidationDetail
	invalid := func(field, message string) {
		details = append(details, dto.ValidationDetail{Field: field, Message: message})
	}

	attrs := catalog.Attributes{
		Title:        strings.TrimSpace(f.Title),
		TitleEN:      strings.TrimSpace(f.TitleEN),
		Brand:        strings.TrimSpace(f.Brand),
		Category:     strings.TrimSpace(f.Category),
		Description:  f.Description,
		Materials:    f.Materials,
		Barcode:      strings.TrimSpace(f.Barcode),
		DimensionsCM: strings.TrimSpace(f.DimensionsCM),
		Origin:       strings.TrimSpace(f.Origin),
	}

	if s := strings.TrimSpace(f.CasePackSize); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			invalid("case_pack_size", "Must be a whole number")
		} else {
			attrs.CasePackSize = &n
		}
	}

	var err error
	if attrs.MSRP, err = parseDecimal(f.MSRP); err != nil {
		invalid("msrp", "Must be a number")
	}
	if attrs.WeightG, err = parseDecimal(f.WeightG); err != nil {
		invalid("weight_g", "Must be a number")
	}

	if attrs.InStock, err = catalog.ParseStockFlag(f.InStock); err != nil {
		invalid("in_stock", "Must be Y or N")
	}

	return attrs, details
}

func parseDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// readImage loads the uploaded image, or returns nil when the form has none
func readImage(c *gin.Context) (*catalogapp.ImageUpload, error) {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &catalogapp.ImageUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}
