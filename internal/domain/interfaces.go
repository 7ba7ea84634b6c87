package domain

import "context"

// SourceCitation is one retrieved passage the answer cites.
type SourceCitation struct {
	CitationID CitationID `json:"citation_id"`
	SourceName string     `json:"source"`
	Excerpt    string     `json:"content"`
}

// AnswerResult is the outcome of a successful query. Sources keep the order
// the service returned them in.
type AnswerResult struct {
	Answer         string           `json:"answer"`
	Sources        []SourceCitation `json:"sources"`
	ProcessingTime DisplayValue     `json:"processing_time"`
}

// IngestReceipt is the outcome of a successful ingestion.
type IngestReceipt struct {
	ChunksProcessed int          `json:"chunks_processed"`
	Message         string       `json:"message,omitempty"`
	ProcessingTime  DisplayValue `json:"processing_time,omitempty"`
}

// RAGAPI is the remote knowledge service reachable over the ingest and query
// endpoints. Implementations return the error kinds declared in errors.go.
type RAGAPI interface {
	Ingest(ctx context.Context, text string) (IngestReceipt, error)
	Query(ctx context.Context, query string) (AnswerResult, error)
}
