package api

import "errors"

var (
	// ErrNoBaseURL indicates that the service address is empty.
	ErrNoBaseURL = errors.New("api base url is required")

	// ErrUnsupportedScheme indicates a base url that is not http or https.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)
