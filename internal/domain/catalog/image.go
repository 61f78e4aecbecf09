package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/catalogadmin/backend/internal/domain/shared"
)

const maxSKULength = 50

// whitespaceRun also covers Unicode space separators such as U+3000 and
// the byte order mark.
var whitespaceRun = regexp.MustCompile(`[\t\n\v\f\r\p{Z}\x{FEFF}]+`)

// ValidateSKU enforces the SKU character set before it is used as a path
// segment: letters, digits, '_' and '-', at most 50 characters.
func ValidateSKU(sku string) error {
	if sku == "" {
		return shared.NewValidationError("sku is required")
	}
	if len(sku) > maxSKULength {
		return shared.NewValidationError("sku cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("sku can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// CanonicalImageName maps an uploaded filename to the name stored in the
// database and used in the storage key: the leaf name with every run of
// whitespace replaced by a single underscore.
func CanonicalImageName(raw string) string {
	leaf := raw
	if i := strings.LastIndexAny(leaf, `/\`); i >= 0 {
		leaf = leaf[i+1:]
	}
	return whitespaceRun.ReplaceAllString(leaf, "_")
}

// ValidateImageName rejects names that cannot be a single key segment
func ValidateImageName(name string) error {
	switch name {
	case "":
		return shared.NewValidationError("image file name is required")
	case ".", "..":
		return shared.NewValidationError("image file name is invalid")
	}
	if strings.ContainsAny(name, `/\`) {
		return shared.NewValidationError("image file name cannot contain path separators")
	}
	if utf8.RuneCountInString(name) > 255 {
		return shared.NewValidationError("image file name cannot exceed 255 characters")
	}
	return nil
}

// ImageKey builds the object storage key for a product image
func ImageKey(sku, imageFile string) string {
	return sku + "/" + imageFile
}

// ImagePrefix is the key prefix holding every blob of a product
func ImagePrefix(sku string) string {
	return sku + "/"
}

// ImageURL builds the display link of a product image with the same
// canonical rule used on upload. It returns "" when no image is linked.
func ImageURL(sku, imageFile string) string {
	if imageFile == "" {
		return ""
	}
	return "/" + ImageKey(sku, CanonicalImageName(imageFile))
}

// LegacyKey derives the pre-migration flat key for a request key by
// stripping everything from the last '.' onward. Keys without a '.' are
// returned unchanged.
func LegacyKey(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[:i]
	}
	return key
}
