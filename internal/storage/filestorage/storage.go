package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nfnt/resize"

	apperrors "photoflow/internal/storage"
)

const (
	// PublicPrefix is the bucket prefix whose objects are world-readable.
	PublicPrefix = "public/"
	// ThumbPrefix holds generated gallery thumbnails.
	ThumbPrefix = "public/thumbs/"

	thumbnailWidth = 480
)

// FileStorage is the object-store boundary: a bucket of binary objects
// addressed by slash-separated keys, with public-read objects under
// PublicPrefix exposed through stable URLs.
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, objectKey string) (int64, error)
	SaveThumbnail(ctx context.Context, objectKey string, src io.Reader) error
	Delete(ctx context.Context, objectKey string) error
	PublicURL(objectKey string) string
	ObjectKeyFromURL(src string) (string, error)
	ThumbnailKey(objectKey string) string
}

// LocalFileStorage keeps the bucket on the local filesystem under
// baseDir/bucket and serves it at baseURL/bucket.
type LocalFileStorage struct {
	baseDir string
	baseURL string
	bucket  string
}

func NewLocalFileStorage(baseDir, baseURL, bucket string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, bucket), 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		bucket:  bucket,
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename reduces a user-supplied filename to the allow-list of
// alphanumerics, dot, dash and underscore.
func SanitizeFilename(name string) string {
	name = path.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}

// ObjectKey builds a collision-resistant public key for an upload:
// public/<unix-millis>-<sanitized-name>.
func ObjectKey(unixMillis int64, originalName string) string {
	return fmt.Sprintf("%s%d-%s", PublicPrefix, unixMillis, SanitizeFilename(originalName))
}

func (s *LocalFileStorage) fullPath(objectKey string) string {
	return filepath.Join(s.baseDir, s.bucket, filepath.FromSlash(objectKey))
}

func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, objectKey string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fullPath := s.fullPath(objectKey)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(fullPath)
		return 0, fmt.Errorf("failed to copy file: %w", err)
	}

	return size, nil
}

// SaveThumbnail decodes src, scales it down to the gallery width and stores
// the jpeg under the thumbnail key for objectKey.
func (s *LocalFileStorage) SaveThumbnail(ctx context.Context, objectKey string, src io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)

	fullPath := s.fullPath(s.ThumbnailKey(objectKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer dst.Close()

	if err := jpeg.Encode(dst, thumb, &jpeg.Options{Quality: 85}); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return nil
}

func (s *LocalFileStorage) Delete(ctx context.Context, objectKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.Remove(s.fullPath(objectKey))
}

// PublicURL returns the stable URL an object is served at.
func (s *LocalFileStorage) PublicURL(objectKey string) string {
	return s.baseURL + "/" + s.bucket + "/" + objectKey
}

// ObjectKeyFromURL derives the bucket key backing src by stripping the known
// public URL prefix. A URL outside the managed bucket yields ErrUnmanagedURL.
func (s *LocalFileStorage) ObjectKeyFromURL(src string) (string, error) {
	prefix := s.baseURL + "/" + s.bucket + "/"

	key, ok := strings.CutPrefix(src, prefix)
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnmanagedURL, src)
	}

	// The prefix check alone would still pass keys like "../x" that resolve
	// outside the bucket once joined with the base directory.
	cleaned := path.Clean(key)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnmanagedURL, src)
	}

	return key, nil
}

// ThumbnailKey maps an object key to its thumbnail key.
func (s *LocalFileStorage) ThumbnailKey(objectKey string) string {
	return ThumbPrefix + path.Base(objectKey) + ".jpg"
}
