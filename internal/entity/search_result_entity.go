package entity

// SearchResult is one ranked hit from a relevance test query. Transient:
// it lives only for the duration of a single response, never in the
// collection cache.
//
// ScoreQuality is a presentation bucket computed by the remote service
// ("excellent", "good", "weak", ...). It is passed through verbatim, never
// recomputed from Score client-side.
type SearchResult struct {
	Rank         int     `json:"rank"`
	Score        float64 `json:"score"`
	ScoreQuality string  `json:"score_quality"`
	Document     string  `json:"document"`
	Domain       string  `json:"domain"`
	ChunkIndex   int     `json:"chunk_index"`
	PageNumber   int     `json:"page_number"`

	// Optional structured fields for corpora that carry them.
	VerseReference string `json:"verse_reference,omitempty"`
	ArabicText     string `json:"arabic_text,omitempty"`
	EnglishText    string `json:"english_text,omitempty"`
}
