package domain

// RequestState is the single request slot shared by ingestion and querying.
type RequestState int

const (
	StateIdle RequestState = iota
	StatePending
	StateSucceeded
	StateFailed
)

// String returns the lower-case name of the state.
func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation tags which kind of request last entered the slot.
type Operation int

const (
	OpNone Operation = iota
	OpIngest
	OpQuery
)

// String returns the lower-case name of the operation.
func (o Operation) String() string {
	switch o {
	case OpIngest:
		return "ingest"
	case OpQuery:
		return "query"
	default:
		return "none"
	}
}
