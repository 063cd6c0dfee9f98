package models_test

import (
	"strings"
	"testing"

	"photoflow/internal/domain/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAbsoluteHTTPURL(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"https url", "https://example.com/a.jpg", true},
		{"http url", "http://example.com/a.jpg", true},
		{"empty", "", false},
		{"relative path", "/uploads/a.jpg", false},
		{"no scheme", "example.com/a.jpg", false},
		{"ftp scheme", "ftp://example.com/a.jpg", false},
		{"scheme only", "https://", false},
		{"not a url", "not-a-url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IsAbsoluteHTTPURL(tt.src))
		})
	}
}

func TestPhoto_Validate(t *testing.T) {
	valid := models.Photo{
		ID:  uuid.New(),
		Src: "https://example.com/a.jpg",
		Alt: "A",
	}

	t.Run("valid photo", func(t *testing.T) {
		p := valid
		require.NoError(t, p.Validate())
	})

	t.Run("bad src", func(t *testing.T) {
		p := valid
		p.Src = "not-a-url"

		err := p.Validate()
		require.Error(t, err)

		var ve *models.PhotoValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "src")
	})

	t.Run("alt too long", func(t *testing.T) {
		p := valid
		p.Alt = strings.Repeat("a", models.MaxAltLength+1)

		var ve *models.PhotoValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Contains(t, ve.Fields, "alt")
	})

	t.Run("description too long", func(t *testing.T) {
		p := valid
		p.Description = strings.Repeat("a", models.MaxDescriptionLength+1)

		var ve *models.PhotoValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Contains(t, ve.Fields, "description")
	})

	t.Run("negative display order", func(t *testing.T) {
		p := valid
		p.DisplayOrder = -1

		var ve *models.PhotoValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Contains(t, ve.Fields, "display_order")
	})

	t.Run("collects multiple fields", func(t *testing.T) {
		p := models.Photo{Src: "", DisplayOrder: -5}

		var ve *models.PhotoValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Len(t, ve.Fields, 2)
	})
}

func TestPhoto_IsPubliclyVisible(t *testing.T) {
	p := models.Photo{Src: "https://example.com/a.jpg"}
	assert.True(t, p.IsPubliclyVisible())

	p.Src = ""
	assert.False(t, p.IsPubliclyVisible())
}

func TestIsPhotoValidationError(t *testing.T) {
	ve := models.NewPhotoValidationError()
	ve.Add("src", "bad")

	assert.True(t, models.IsPhotoValidationError(ve))
	assert.False(t, models.IsPhotoValidationError(assert.AnError))
}
