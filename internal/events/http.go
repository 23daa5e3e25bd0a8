package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when the explain endpoint accepts a request.
// The context passed to subscribers carries the request id.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted once the response has been written. Requests
// counts the explain requests served: the batch length, 1 for a
// single request, or 0 when the request was rejected before
// compilation.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Requests int
	Duration time.Duration
}
