package media

import (
	"context"
	"strconv"
	"strings"
)

// Item is an entry of the legacy media gallery: a flat blob named by its
// upload timestamp, not tied to any product.
type Item struct {
	URL      string `gorm:"column:url;type:text;primaryKey" json:"url"`
	Brand    string `gorm:"type:varchar(100)" json:"brand"`
	Category string `gorm:"type:varchar(100)" json:"category"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "media"
}

// FileName returns the last path segment of the item URL
func FileName(rawURL string) string {
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		return rawURL[i+1:]
	}
	return rawURL
}

// Timestamp returns the upload time in milliseconds encoded in the file
// name, or 0 when the name does not start with a number.
func Timestamp(rawURL string) int64 {
	ts, err := strconv.ParseInt(BlobKey(rawURL), 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// BlobKey returns the flat storage key of a legacy item: the file name up
// to its first '.'.
func BlobKey(rawURL string) string {
	name := FileName(rawURL)
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}

// Repository defines the persistence contract for media items
type Repository interface {
	// List returns every item; a missing media table yields an empty list
	List(ctx context.Context) ([]Item, error)

	// DeleteByURLs removes the rows with the given URLs
	DeleteByURLs(ctx context.Context, urls []string) (int64, error)
}
