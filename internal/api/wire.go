package api

import (
	"encoding/json"

	"ragclient/internal/domain"
)

type ingestRequest struct {
	Text string `json:"text"`
}

type ingestResponse struct {
	ChunksProcessed *int                `json:"chunks_processed"`
	Message         string              `json:"message"`
	ProcessingTime  domain.DisplayValue `json:"processing_time"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Answer         *string             `json:"answer"`
	Sources        *[]sourceItem       `json:"sources"`
	ProcessingTime domain.DisplayValue `json:"processing_time"`
}

type sourceItem struct {
	CitationID domain.CitationID `json:"citation_id"`
	Source     string            `json:"source"`
	Content    string            `json:"content"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
