package entity

import "github.com/google/uuid"

// ReferenceSet is a named collection of ingested documents scoped to one
// knowledge domain. FileCount is owned by the remote service and only ever
// updated through a full reload.
type ReferenceSet struct {
	Id          uuid.UUID `json:"id"`
	Domain      string    `json:"domain"`
	Description string    `json:"description"`
	FileCount   int       `json:"file_count"`
}

// IngestionStats summarizes one processed upload. Informational only,
// never stored client-side.
type IngestionStats struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Pages    int    `json:"pages"`
}
