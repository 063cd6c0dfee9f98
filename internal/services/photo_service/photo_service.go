package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"photoflow/internal/domain/models"
	"photoflow/internal/lib/cache"
	"photoflow/internal/lib/logger/sl"
	"photoflow/internal/repository"
	"photoflow/internal/storage"
	filestorage "photoflow/internal/storage/filestorage"
	"photoflow/internal/transport/http/dto"

	"github.com/google/uuid"
)

// ListScope selects which database credential serves a listing and whether
// the gallery visibility filter applies.
type ListScope string

const (
	ScopeAdmin  ListScope = "admin"
	ScopePublic ListScope = "public"
)

// PhotoService implements the photo record operations: validate input, talk
// to storage and the database in sequence, compensate on partial failure, and
// invalidate the cached views after every successful mutation.
type PhotoService struct {
	log           *slog.Logger
	repo          repository.PhotoRepository
	publicRepo    repository.PhotoReader
	fileStorage   filestorage.FileStorage
	views         cache.ViewCache
	maxUploadSize int64
}

func NewPhotoService(
	log *slog.Logger,
	repo repository.PhotoRepository,
	publicRepo repository.PhotoReader,
	fileStorage filestorage.FileStorage,
	views cache.ViewCache,
	maxUploadSize int64,
) *PhotoService {
	return &PhotoService{
		log:           log,
		repo:          repo,
		publicRepo:    publicRepo,
		fileStorage:   fileStorage,
		views:         views,
		maxUploadSize: maxUploadSize,
	}
}

// UploadPhoto stores the binary under a generated public key, then inserts
// the metadata record. If the insert fails the stored object is removed so no
// orphan persists; cleanup failures are logged and never change the reported
// error.
func (s *PhotoService) UploadPhoto(ctx context.Context, input dto.PhotoUploadInput) (*models.Photo, error) {
	const op = "photo_service.UploadPhoto"

	log := s.log.With(slog.String("op", op))

	if err := s.validateUpload(input); err != nil {
		return nil, err
	}

	objectKey := filestorage.ObjectKey(time.Now().UnixMilli(), input.File.Filename)

	size, err := s.fileStorage.Save(ctx, input.File, objectKey)
	if err != nil {
		log.Error("failed to save file", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("file stored",
		slog.String("object_key", objectKey),
		slog.Int64("size", size),
	)

	src := s.fileStorage.PublicURL(objectKey)

	photo := &models.Photo{
		ID:          uuid.New(),
		Src:         src,
		Alt:         input.Alt,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := photo.Validate(); err != nil {
		s.cleanupObject(ctx, log, objectKey)
		log.Error("photo validation failed", sl.Err(err))
		return nil, err
	}

	s.generateThumbnail(ctx, log, input, objectKey)

	created, err := s.repo.CreatePhoto(ctx, photo, input.DisplayOrder)
	if err != nil {
		s.cleanupObject(ctx, log, objectKey)
		log.Error("failed to save photo to database", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.views.InvalidateViews()

	log.Info("photo created",
		slog.String("photo_id", created.ID.String()),
		slog.Int("display_order", created.DisplayOrder),
	)

	return created, nil
}

// ListPhotos returns the collection for the given scope. Public listings are
// served from the view cache when warm and defensively re-filtered in memory.
// Backend errors propagate: a silent empty list would mask outages.
func (s *PhotoService) ListPhotos(ctx context.Context, scope ListScope) ([]models.Photo, error) {
	const op = "photo_service.ListPhotos"

	switch scope {
	case ScopeAdmin:
		if photos, ok := s.views.GetPhotos(cache.AdminViewKey); ok {
			return photos, nil
		}

		photos, err := s.repo.ListPhotos(ctx)
		if err != nil {
			s.log.Error("failed to list photos", slog.String("op", op), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.views.SetPhotos(cache.AdminViewKey, photos)

		return photos, nil

	case ScopePublic:
		if photos, ok := s.views.GetPhotos(cache.GalleryViewKey); ok {
			return photos, nil
		}

		photos, err := s.publicRepo.ListPublicPhotos(ctx)
		if err != nil {
			s.log.Error("failed to list public photos", slog.String("op", op), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		visible := photos[:0]
		for _, p := range photos {
			if p.IsPubliclyVisible() {
				visible = append(visible, p)
			}
		}

		s.views.SetPhotos(cache.GalleryViewKey, visible)

		return visible, nil

	default:
		return nil, fmt.Errorf("%s: unknown scope %q", op, scope)
	}
}

// UpdatePhoto applies a partial metadata update. Src is never touched;
// updated_at always advances.
func (s *PhotoService) UpdatePhoto(ctx context.Context, input dto.PhotoUpdateInput) (*models.Photo, error) {
	const op = "photo_service.UpdatePhoto"

	log := s.log.With(
		slog.String("op", op),
		slog.String("photo_id", input.ID.String()),
	)

	if err := s.validateUpdate(input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if input.Alt != nil {
		updates["alt"] = *input.Alt
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.DisplayOrder != nil {
		updates["display_order"] = *input.DisplayOrder
	}

	updated, err := s.repo.UpdatePhotoFields(ctx, input.ID, updates)
	if err != nil {
		log.Error("failed to update photo", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.views.InvalidateViews()

	log.Info("photo updated")

	return updated, nil
}

// DeletePhoto removes the metadata row and the backing storage object. The
// storage delete is best-effort: its failure is logged and the row is still
// removed, accepting a possible orphaned object over blocking the deletion.
// An src that does not point into the managed bucket aborts before any
// database call.
func (s *PhotoService) DeletePhoto(ctx context.Context, photoID uuid.UUID, src string) error {
	const op = "photo_service.DeletePhoto"

	log := s.log.With(
		slog.String("op", op),
		slog.String("photo_id", photoID.String()),
	)

	if photoID == uuid.Nil {
		ve := models.NewPhotoValidationError()
		ve.Add("id", "id is required")
		return ve
	}

	objectKey, err := s.fileStorage.ObjectKeyFromURL(src)
	if err != nil {
		log.Warn("cannot derive storage object from src", sl.Err(err))
		ve := models.NewPhotoValidationError()
		ve.Add("src", "src does not point into the photo bucket")
		return ve
	}

	if err := s.fileStorage.Delete(ctx, objectKey); err != nil {
		log.Warn("storage delete failed, proceeding with row deletion", sl.Err(err))
	}
	if err := s.fileStorage.Delete(ctx, s.fileStorage.ThumbnailKey(objectKey)); err != nil {
		log.Debug("thumbnail delete failed", sl.Err(err))
	}

	if err := s.repo.DeletePhoto(ctx, photoID); err != nil {
		log.Error("failed to delete photo row", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.views.InvalidateViews()

	log.Info("photo deleted")

	return nil
}

func (s *PhotoService) validateUpload(input dto.PhotoUploadInput) error {
	ve := models.NewPhotoValidationError()

	switch {
	case input.File == nil:
		ve.Add("file", storage.ErrFileRequired.Error())
	case input.File.Size <= 0:
		ve.Add("file", storage.ErrFileRequired.Error())
	case input.File.Size > s.maxUploadSize:
		ve.Add("file", storage.ErrFileTooLarge.Error())
	case !strings.HasPrefix(input.File.Header.Get("Content-Type"), "image/"):
		ve.Add("file", storage.ErrInvalidFileType.Error())
	}

	if len(input.Alt) > models.MaxAltLength {
		ve.Add("alt", fmt.Sprintf("alt must be %d characters or less", models.MaxAltLength))
	}
	if len(input.Description) > models.MaxDescriptionLength {
		ve.Add("description", fmt.Sprintf("description must be %d characters or less", models.MaxDescriptionLength))
	}
	if input.DisplayOrder != nil && *input.DisplayOrder < 0 {
		ve.Add("display_order", "display_order must not be negative")
	}

	if ve.HasErrors() {
		return ve
	}

	return nil
}

func (s *PhotoService) validateUpdate(input dto.PhotoUpdateInput) error {
	ve := models.NewPhotoValidationError()

	if input.ID == uuid.Nil {
		ve.Add("id", "id is required")
	}
	if !input.HasChanges() {
		ve.Add("fields", "at least one field must be provided")
	}
	if input.Alt != nil && len(*input.Alt) > models.MaxAltLength {
		ve.Add("alt", fmt.Sprintf("alt must be %d characters or less", models.MaxAltLength))
	}
	if input.Description != nil && len(*input.Description) > models.MaxDescriptionLength {
		ve.Add("description", fmt.Sprintf("description must be %d characters or less", models.MaxDescriptionLength))
	}
	if input.DisplayOrder != nil && *input.DisplayOrder < 0 {
		ve.Add("display_order", "display_order must not be negative")
	}

	if ve.HasErrors() {
		return ve
	}

	return nil
}

// generateThumbnail is best-effort: a photo without a thumbnail is still a
// valid photo, so failures are only logged.
func (s *PhotoService) generateThumbnail(ctx context.Context, log *slog.Logger, input dto.PhotoUploadInput, objectKey string) {
	f, err := input.File.Open()
	if err != nil {
		log.Warn("failed to reopen upload for thumbnail", sl.Err(err))
		return
	}
	defer f.Close()

	if err := s.fileStorage.SaveThumbnail(ctx, objectKey, f); err != nil {
		log.Warn("failed to generate thumbnail", sl.Err(err))
	}
}

func (s *PhotoService) cleanupObject(ctx context.Context, log *slog.Logger, objectKey string) {
	if err := s.fileStorage.Delete(ctx, objectKey); err != nil {
		log.Warn("failed to clean up orphaned object", slog.String("object_key", objectKey), sl.Err(err))
	}
	if err := s.fileStorage.Delete(ctx, s.fileStorage.ThumbnailKey(objectKey)); err != nil {
		log.Debug("failed to clean up thumbnail", slog.String("object_key", objectKey), sl.Err(err))
	}
}
