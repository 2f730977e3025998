package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Inquiry is a persistent, titled question-answering thread scoped to one or
// more reference sets.
type Inquiry struct {
	Id              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	ReferenceSetIds []uuid.UUID `json:"reference_sets"`
}

// Message is one turn in an inquiry. Append-only: once created it is never
// mutated or reordered.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Citations []string  `json:"citations,omitempty"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
