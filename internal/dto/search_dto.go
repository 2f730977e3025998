package dto

import "research-assistant-cli/internal/entity"

// RefSetFilterAll asks the remote service to search across every reference set.
const RefSetFilterAll = "all"

type TestSearchRequest struct {
	Query    string  `json:"query" validate:"required"`
	RefSetId string  `json:"ref_set_id" validate:"required"`
	TopK     int     `json:"top_k" validate:"min=1,max=20"`
	MinScore float64 `json:"min_score" validate:"min=0,max=1"`
}

// TestSearchResponse mirrors the server response exactly. ResultsFound and
// TotalCandidates reflect server-side filtering; the client never trims or
// re-sorts Results.
type TestSearchResponse struct {
	Query           string                `json:"query"`
	ResultsFound    int                   `json:"results_found"`
	TotalCandidates int                   `json:"total_candidates"`
	RefSetFilter    string                `json:"ref_set_filter"`
	MinScoreUsed    float64               `json:"min_score_used"`
	Results         []entity.SearchResult `json:"results"`
}
