package spotify

import (
	"github.com/goccy/go-json"
)

// Record is one successful API response tagged with its request provenance.
// Its JSON form is the on-disk contract of raw artifacts.
type Record struct {
	DataID   Kind            `json:"data_id"`
	Endpoint string          `json:"endpoint"`
	ID       string          `json:"id,omitempty"`
	IDs      []string        `json:"ids,omitempty"`
	RawData  json.RawMessage `json:"raw_data"`
}

type Status int

const (
	// statusUnknown is the zero value. No fetch ever reports it with a nil
	// error.
	statusUnknown Status = iota
	StatusFetched
	// StatusNotFound is a 404 answer. It is never retried.
	StatusNotFound
	// StatusSkipped means every request attempt was rejected as unauthorized
	// and the request was given up without an error.
	StatusSkipped
	// StatusDropped means the response body was not valid JSON.
	StatusDropped
)

func (s Status) String() string {
	switch s {
	case StatusFetched:
		return "fetched"
	case StatusNotFound:
		return "not_found"
	case StatusSkipped:
		return "skipped"
	case StatusDropped:
		return "dropped"
	default:
		return "unknown"
	}
}
