package dto

import (
	"research-assistant-cli/internal/entity"

	"github.com/google/uuid"
)

type ReferenceSetsResponse struct {
	ReferenceSets []entity.ReferenceSet `json:"reference_sets"`
}

type InquiriesResponse struct {
	Inquiries []entity.Inquiry `json:"inquiries"`
}

type CreateReferenceSetRequest struct {
	Domain      string `json:"domain" validate:"required"`
	Description string `json:"description"`
}

type CreateReferenceSetResponse struct {
	Success bool      `json:"success"`
	Id      uuid.UUID `json:"id"`
	Error   string    `json:"error,omitempty"`
}

type CreateInquiryRequest struct {
	Title         string      `json:"title" validate:"required"`
	Description   string      `json:"description"`
	ReferenceSets []uuid.UUID `json:"reference_sets" validate:"required,min=1"`
}

type CreateInquiryResponse struct {
	Success   bool      `json:"success"`
	InquiryId uuid.UUID `json:"inquiry_id"`
	Error     string    `json:"error,omitempty"`
}

// DeleteResponse covers DELETE /reference-sets/{id} and DELETE /inquiries/{id}.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type UploadResponse struct {
	Success bool                  `json:"success"`
	Stats   entity.IngestionStats `json:"stats"`
	Error   string                `json:"error,omitempty"`
}
