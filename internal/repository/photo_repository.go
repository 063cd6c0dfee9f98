package repository

import (
	"context"
	"errors"
	"fmt"

	"photoflow/internal/domain/models"
	"photoflow/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const photosTable = "photos"

var photoColumns = []string{
	"id",
	"src",
	"alt",
	"description",
	"display_order",
	"created_at",
	"updated_at",
}

type PhotoRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreatePhoto inserts the record. When explicitOrder is nil the display order
// is computed inside the INSERT as COALESCE(MAX(display_order), 0) + 1, so
// concurrent creates cannot read the same maximum.
func (r *PhotoRepo) CreatePhoto(ctx context.Context, photo *models.Photo, explicitOrder *int) (*models.Photo, error) {
	const op = "repository.photo_repository.CreatePhoto"

	var orderValue interface{}
	if explicitOrder != nil {
		orderValue = *explicitOrder
	} else {
		orderValue = sq.Expr(fmt.Sprintf("(SELECT COALESCE(MAX(display_order), 0) + 1 FROM %s)", photosTable))
	}

	query, args, err := r.sb.Insert(photosTable).
		Columns(
			"id",
			"src",
			"alt",
			"description",
			"display_order",
			"created_at",
			"updated_at",
		).
		Values(
			photo.ID,
			photo.Src,
			photo.Alt,
			photo.Description,
			orderValue,
			photo.CreatedAt,
			photo.UpdatedAt,
		).
		Suffix("RETURNING id, src, alt, description, display_order, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	var created models.Photo
	if err := scanPhoto(row, &created); err != nil {
		return nil, fmt.Errorf("%s: failed to create photo: %w", op, err)
	}

	return &created, nil
}

// ListPhotos returns every record ordered for presentation: display_order
// ascending, ties broken by creation time descending.
func (r *PhotoRepo) ListPhotos(ctx context.Context) ([]models.Photo, error) {
	const op = "repository.photo_repository.ListPhotos"

	query, args, err := r.sb.Select(photoColumns...).
		From(photosTable).
		OrderBy("display_order ASC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return r.queryPhotos(ctx, op, query, args)
}

// ListPublicPhotos returns presentation-ordered records whose src is a
// non-empty http(s) URL. The gallery filter lives in SQL so the unprivileged
// credential never transfers unsuitable rows.
func (r *PhotoRepo) ListPublicPhotos(ctx context.Context) ([]models.Photo, error) {
	const op = "repository.photo_repository.ListPublicPhotos"

	query, args, err := r.sb.Select(photoColumns...).
		From(photosTable).
		Where(sq.Or{
			sq.Like{"src": "http://%"},
			sq.Like{"src": "https://%"},
		}).
		OrderBy("display_order ASC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	return r.queryPhotos(ctx, op, query, args)
}

// UpdatePhotoFields applies a partial update from a column->value map and
// returns the updated row. Callers must include updated_at themselves.
func (r *PhotoRepo) UpdatePhotoFields(ctx context.Context, photoID uuid.UUID, updates map[string]interface{}) (*models.Photo, error) {
	const op = "repository.photo_repository.UpdatePhotoFields"

	if len(updates) == 0 {
		return nil, fmt.Errorf("%s: no fields to update", op)
	}

	query, args, err := r.sb.Update(photosTable).
		SetMap(updates).
		Where(sq.Eq{"id": photoID}).
		Suffix("RETURNING id, src, alt, description, display_order, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	var updated models.Photo
	if err := scanPhoto(row, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
		}
		return nil, fmt.Errorf("%s: failed to update photo: %w", op, err)
	}

	return &updated, nil
}

func (r *PhotoRepo) DeletePhoto(ctx context.Context, photoID uuid.UUID) error {
	const op = "repository.photo_repository.DeletePhoto"

	query, args, err := r.sb.Delete(photosTable).
		Where(sq.Eq{"id": photoID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to delete photo: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}

	return nil
}

func (r *PhotoRepo) queryPhotos(ctx context.Context, op, query string, args []interface{}) ([]models.Photo, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := scanPhoto(rows, &p); err != nil {
			return nil, fmt.Errorf("%s: row scanning failed: %w", op, err)
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return photos, nil
}

func scanPhoto(row pgx.Row, p *models.Photo) error {
	return row.Scan(
		&p.ID,
		&p.Src,
		&p.Alt,
		&p.Description,
		&p.DisplayOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}
