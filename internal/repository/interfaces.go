package repository

import (
	"context"
	"time"

	"photoflow/internal/domain/models"

	"github.com/google/uuid"
)

// PhotoRepository is the privileged (service-role) view of the photos table.
type PhotoRepository interface {
	CreatePhoto(ctx context.Context, photo *models.Photo, explicitOrder *int) (*models.Photo, error)
	ListPhotos(ctx context.Context) ([]models.Photo, error)
	UpdatePhotoFields(ctx context.Context, photoID uuid.UUID, updates map[string]interface{}) (*models.Photo, error)
	DeletePhoto(ctx context.Context, photoID uuid.UUID) error
}

// PhotoReader is the unprivileged view: public reads only.
type PhotoReader interface {
	ListPublicPhotos(ctx context.Context) ([]models.Photo, error)
}

type SessionRepository interface {
	SaveSession(ctx context.Context, token string, ttl time.Duration) error
	SessionExists(ctx context.Context, token string) (bool, error)
	DeleteSession(ctx context.Context, token string) error
}
