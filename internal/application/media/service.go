package media

import (
	"context"
	"sort"
	"strings"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	"github.com/catalogadmin/backend/internal/domain/media"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ItemResponse represents a legacy media item in API responses
type ItemResponse struct {
	URL       string `json:"url"`
	Brand     string `json:"brand"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// ImageInvalidator drops cached image lookups for storage keys.
// *catalogapp.ImageResolver implements it.
type ImageInvalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, ...string) {}

// Service manages the legacy media gallery
type Service struct {
	repo    media.Repository
	storage catalogapp.ObjectStorage
	images  ImageInvalidator
	logger  *zap.Logger
}

// NewService creates a new media Service. A nil images skips cache
// invalidation.
func NewService(
	repo media.Repository,
	storage catalogapp.ObjectStorage,
	images ImageInvalidator,
	logger *zap.Logger,
) *Service {
	if images == nil {
		images = nopInvalidator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		storage: storage,
		images:  images,
		logger:  logger.Named("media"),
	}
}

// List returns every media item, newest upload first
func (s *Service) List(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.NewDatabaseError("failed to list media", err)
	}

	resp := make([]ItemResponse, len(items))
	for i, it := range items {
		resp[i] = ItemResponse{
			URL:       it.URL,
			Brand:     it.Brand,
			Category:  it.Category,
			Type:      fileType(it.URL),
			Timestamp: media.Timestamp(it.URL),
		}
	}
	sort.SliceStable(resp, func(i, j int) bool {
		return resp[i].Timestamp > resp[j].Timestamp
	})
	return resp, nil
}

// Delete removes the rows for urls and their flat blobs. It returns the
// number of rows removed.
func (s *Service) Delete(ctx context.Context, urls []string) (int64, error) {
	if len(urls) == 0 {
		return 0, shared.NewValidationError("no items to delete")
	}

	removed, err := s.repo.DeleteByURLs(ctx, urls)
	if err != nil {
		return 0, shared.NewDatabaseError("failed to delete media", err)
	}

	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if k := media.BlobKey(u); k != "" {
			keys = append(keys, k)
		}
	}

	if len(keys) > 0 {
		err := s.storage.Delete(ctx, keys...)
		// a failed batch may still have removed some keys
		s.images.Invalidate(ctx, keys...)
		if err != nil {
			s.logger.Error("unresolved inconsistency",
				zap.String("detail", "media rows deleted but blobs remain"),
				zap.Strings("keys", keys),
				zap.Error(err),
			)
			return removed, shared.NewStorageError("media deleted but files could not be removed", err)
		}
	}

	s.logger.Info("media deleted", zap.Int64("rows", removed), zap.Int("blobs", len(keys)))
	return removed, nil
}

func fileType(rawURL string) string {
	name := media.FileName(rawURL)
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
