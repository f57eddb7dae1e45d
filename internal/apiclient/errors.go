package apiclient

import (
	"fmt"
	"net/http"
)

// TransportError reports a request that never completed or whose response
// body could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("activities api %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectionError reports a non-2xx response. Reply holds whatever message the
// server included in its body.
type RejectionError struct {
	Op         string
	StatusCode int
	Reply      Reply
}

func (e *RejectionError) Error() string {
	if e.Reply.Detail != "" {
		return fmt.Sprintf("activities api %s rejected with %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Reply.Detail)
	}
	return fmt.Sprintf("activities api %s rejected with %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}
