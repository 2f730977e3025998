package dto

import "github.com/google/uuid"

type ChatRequest struct {
	InquiryId     uuid.UUID   `json:"inquiry_id" validate:"required"`
	Query         string      `json:"query" validate:"required"`
	ReferenceSets []uuid.UUID `json:"reference_sets" validate:"required,min=1"`
}

type ChatResponse struct {
	Response  string   `json:"response"`
	Citations []string `json:"citations"`
	Sources   []string `json:"sources"`
}

type HelloResponse struct {
	Message string `json:"message"`
}
