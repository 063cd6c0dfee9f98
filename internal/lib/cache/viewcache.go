package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"photoflow/internal/domain/models"
)

const (
	// GalleryViewKey caches the public gallery listing.
	GalleryViewKey = "view:gallery"
	// AdminViewKey caches the admin photo listing.
	AdminViewKey = "view:admin"
)

// ViewCache is the server-side stand-in for page revalidation: rendered
// listings are cached until a mutation drops them.
type ViewCache interface {
	GetPhotos(key string) ([]models.Photo, bool)
	SetPhotos(key string, photos []models.Photo)
	InvalidateViews()
}

type PhotoViewCache struct {
	c *gocache.Cache
}

func NewPhotoViewCache(ttl time.Duration) *PhotoViewCache {
	return &PhotoViewCache{
		c: gocache.New(ttl, 2*ttl),
	}
}

func (v *PhotoViewCache) GetPhotos(key string) ([]models.Photo, bool) {
	val, ok := v.c.Get(key)
	if !ok {
		return nil, false
	}

	photos, ok := val.([]models.Photo)
	return photos, ok
}

func (v *PhotoViewCache) SetPhotos(key string, photos []models.Photo) {
	v.c.SetDefault(key, photos)
}

// InvalidateViews drops both listings. Every successful mutation calls this.
func (v *PhotoViewCache) InvalidateViews() {
	v.c.Delete(GalleryViewKey)
	v.c.Delete(AdminViewKey)
}
