package tui

import "ragclient/internal/domain"

// IngestCompleted carries the outcome of an ingestion back to the model.
type IngestCompleted struct {
	Receipt domain.IngestReceipt
	Err     error
}

// QueryCompleted carries the outcome of a query back to the model.
type QueryCompleted struct {
	Answer domain.AnswerResult
	Err    error
}
