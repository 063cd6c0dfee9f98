package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxAltLength         = 255
	MaxDescriptionLength = 1000
)

// Photo is the single entity of the portfolio: one image record shown in the
// public gallery and managed through the admin panel.
type Photo struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Src          string    `json:"src" db:"src"`
	Alt          string    `json:"alt,omitempty" db:"alt"`
	Description  string    `json:"description,omitempty" db:"description"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsPubliclyVisible reports whether the record may be served to the public
// gallery: src must be a non-empty absolute http(s) URL.
func (p *Photo) IsPubliclyVisible() bool {
	return IsAbsoluteHTTPURL(p.Src)
}

// IsAbsoluteHTTPURL checks that s parses as an absolute URL with an http or
// https scheme and a host.
func IsAbsoluteHTTPURL(s string) bool {
	if s == "" {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate checks the record before it is written. Field problems are
// collected into a single PhotoValidationError.
func (p *Photo) Validate() error {
	ve := NewPhotoValidationError()

	if !IsAbsoluteHTTPURL(p.Src) {
		ve.Add("src", "src must be an absolute http(s) URL")
	}
	if len(p.Alt) > MaxAltLength {
		ve.Add("alt", fmt.Sprintf("alt must be %d characters or less", MaxAltLength))
	}
	if len(p.Description) > MaxDescriptionLength {
		ve.Add("description", fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if p.DisplayOrder < 0 {
		ve.Add("display_order", "display_order must not be negative")
	}

	if ve.HasErrors() {
		return ve
	}

	return nil
}

// PhotoValidationError carries per-field validation messages so the transport
// layer can render them inline next to the offending input.
type PhotoValidationError struct {
	Fields map[string][]string
}

func NewPhotoValidationError() *PhotoValidationError {
	return &PhotoValidationError{Fields: make(map[string][]string)}
}

func (e *PhotoValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *PhotoValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *PhotoValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, messages := range e.Fields {
		parts = append(parts, field+": "+strings.Join(messages, ", "))
	}
	return "photo validation failed: " + strings.Join(parts, "; ")
}

// IsPhotoValidationError reports whether err is a field-level validation
// error rather than a backend failure.
func IsPhotoValidationError(err error) bool {
	_, ok := err.(*PhotoValidationError)
	return ok
}
