package dto

import (
	"mime/multipart"

	"github.com/google/uuid"
)

// PhotoUploadInput is the Create contract: a binary upload with optional
// metadata. An explicit display order is admin-only and optional; when nil
// the order is assigned as max+1.
type PhotoUploadInput struct {
	File         *multipart.FileHeader `json:"-" form:"file"`
	Alt          string                `json:"alt" form:"alt"`
	Description  string                `json:"description" form:"description"`
	DisplayOrder *int                  `json:"display_order,omitempty" form:"display_order"`
}

// PhotoUpdateInput is a partial update: only non-nil fields are touched.
// Src is never updatable.
type PhotoUpdateInput struct {
	ID           uuid.UUID `json:"-"`
	Alt          *string   `json:"alt,omitempty"`
	Description  *string   `json:"description,omitempty"`
	DisplayOrder *int      `json:"display_order,omitempty" validate:"omitempty,min=0"`
}

// HasChanges reports whether the update names at least one field.
func (i *PhotoUpdateInput) HasChanges() bool {
	return i.Alt != nil || i.Description != nil || i.DisplayOrder != nil
}

// PhotoDeleteInput carries the record id plus the src the record was served
// with, used to locate the backing storage object.
type PhotoDeleteInput struct {
	Src string `json:"src" validate:"required"`
}
