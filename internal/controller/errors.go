package controller

import (
	"errors"

	"ragclient/internal/domain"
)

// User-facing messages.
const (
	MsgEmptyIngestion = "Please paste some text to ingest."
	PrefixIngestion   = "An error occurred during ingestion: "
	PrefixQuery       = "An error occurred while querying: "
	FallbackIngestion = "Failed to ingest document: "
	FallbackQuery     = "Failed to get an answer from the API."
)

var errInterrupted = errors.New("request interrupted")

// OperationError is the single error shape the controller returns. Its
// message is what the user sees; Unwrap exposes the underlying
// ValidationError, TransportError, ServiceError or MalformedResponseError.
type OperationError struct {
	Op  domain.Operation
	Err error
}

func (e *OperationError) Error() string {
	var verr *domain.ValidationError
	if errors.As(e.Err, &verr) {
		return verr.Message
	}
	prefix, fallback := PrefixQuery, FallbackQuery
	if e.Op == domain.OpIngest {
		prefix = PrefixIngestion
	}
	var svcErr *domain.ServiceError
	if errors.As(e.Err, &svcErr) {
		if e.Op == domain.OpIngest {
			fallback = FallbackIngestion + svcErr.StatusText()
		}
		return prefix + svcErr.Message(fallback)
	}
	return prefix + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }

func errorKind(err error) string {
	var (
		verr      *domain.ValidationError
		transport *domain.TransportError
		svcErr    *domain.ServiceError
		malformed *domain.MalformedResponseError
	)
	switch {
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &svcErr):
		return "service"
	case errors.As(err, &malformed):
		return "malformed_response"
	default:
		return "unknown"
	}
}
