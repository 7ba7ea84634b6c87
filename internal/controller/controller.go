// Package controller holds the request lifecycle shared by ingestion and
// querying: one request slot, one error message, one answer.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"ragclient/internal/domain"
)

// State is a point-in-time copy of the controller's view state.
type State struct {
	Request   domain.RequestState
	Operation domain.Operation
	// Answer is nil until a query succeeds.
	Answer *domain.AnswerResult
	// Error is the user-facing message of the last failure, empty if none.
	Error string
	// Notice is the acknowledgment of the last successful ingestion.
	Notice string
}

// Pending reports whether a request is in flight.
func (s State) Pending() bool { return s.Request == domain.StatePending }

// RequestController mediates the two remote operations and owns the state
// the presentation layer renders. It does not reject a second submission
// while one is pending; callers gate that with Busy.
type RequestController struct {
	api    domain.RAGAPI
	logger *slog.Logger
	notify func(string)

	mu    sync.Mutex
	state State
}

// Option configures a RequestController.
type Option func(*RequestController)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *RequestController) { c.logger = l }
}

// WithNotifier registers a callback that receives the ingestion
// acknowledgment synchronously, before SubmitIngestion returns.
func WithNotifier(fn func(string)) Option {
	return func(c *RequestController) { c.notify = fn }
}

// New creates a controller in the Idle state.
func New(api domain.RAGAPI, opts ...Option) *RequestController {
	c := &RequestController{api: api, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *RequestController) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Answer != nil {
		a := *s.Answer
		a.Sources = append([]domain.SourceCitation(nil), s.Answer.Sources...)
		s.Answer = &a
	}
	return s
}

// Busy reports whether a request is pending.
func (c *RequestController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Request == domain.StatePending
}

// SubmitIngestion sends draftText to the ingest endpoint. Blank text fails
// with a ValidationError without touching the network or the request slot.
// Every error returned is an *OperationError whose message is also stored
// in the state.
func (c *RequestController) SubmitIngestion(ctx context.Context, draftText string) (domain.IngestReceipt, error) {
	if strings.TrimSpace(draftText) == "" {
		err := &OperationError{Op: domain.OpIngest, Err: &domain.ValidationError{Message: MsgEmptyIngestion}}
		c.mu.Lock()
		c.state.Error = err.Error()
		c.state.Notice = ""
		c.mu.Unlock()
		c.logger.Debug("ingestion rejected", "reason", "blank text")
		return domain.IngestReceipt{}, err
	}

	s := c.begin(domain.OpIngest)
	defer s.release()

	receipt, err := c.api.Ingest(ctx, draftText)
	if err != nil {
		return domain.IngestReceipt{}, s.fail(err)
	}

	notice := fmt.Sprintf("Ingestion successful! Processed %d chunks.", receipt.ChunksProcessed)
	s.succeed(func(st *State) { st.Notice = notice })
	c.logger.Info("ingestion succeeded", "chunks", receipt.ChunksProcessed)
	if c.notify != nil {
		c.notify(notice)
	}
	return receipt, nil
}

// SubmitQuery sends draftQuery to the query endpoint. An empty query is
// sent as-is. On success the stored answer is replaced; on failure it is
// left untouched.
func (c *RequestController) SubmitQuery(ctx context.Context, draftQuery string) (domain.AnswerResult, error) {
	s := c.begin(domain.OpQuery)
	defer s.release()

	answer, err := c.api.Query(ctx, draftQuery)
	if err != nil {
		return domain.AnswerResult{}, s.fail(err)
	}

	stored := answer
	stored.Sources = append([]domain.SourceCitation(nil), answer.Sources...)
	s.succeed(func(st *State) { st.Answer = &stored })
	c.logger.Info("query answered", "sources", len(answer.Sources))
	return answer, nil
}

// slot is one occupancy of the request slot. release must run on every
// exit path; it fails the slot if neither succeed nor fail ran.
type slot struct {
	c       *RequestController
	op      domain.Operation
	settled bool
}

func (c *RequestController) begin(op domain.Operation) *slot {
	c.mu.Lock()
	c.state.Request = domain.StatePending
	c.state.Operation = op
	c.state.Error = ""
	c.state.Notice = ""
	c.mu.Unlock()
	c.logger.Debug("request pending", "operation", op.String())
	return &slot{c: c, op: op}
}

func (s *slot) succeed(apply func(*State)) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	apply(&s.c.state)
	s.c.state.Request = domain.StateSucceeded
	s.settled = true
}

func (s *slot) fail(err error) *OperationError {
	opErr := &OperationError{Op: s.op, Err: err}
	s.c.mu.Lock()
	s.c.state.Error = opErr.Error()
	s.c.state.Request = domain.StateFailed
	s.settled = true
	s.c.mu.Unlock()
	s.c.logger.Warn("request failed", "operation", s.op.String(), "kind", errorKind(err), "error", err)
	return opErr
}

func (s *slot) release() {
	if s.settled {
		return
	}
	s.fail(errInterrupted)
}
