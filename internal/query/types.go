package query

import (
	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

// QueryRequest is the body of POST /v1/query and POST /v1/count.
type QueryRequest struct {
	Filters []v1.Filter `json:"filters"`
	Limit   int         `json:"limit"` // 0 uses the configured default
}

// QueryResponse carries matched events, newest first.
type QueryResponse struct {
	Events []*v1.Event `json:"events"`
	Count  int         `json:"count"`
}

// CountResponse carries the number of distinct matching events.
type CountResponse struct {
	Count int64 `json:"count"`
}

// StatusResponse reports the lifecycle state of a single event id.
type StatusResponse struct {
	ID     v1.EventID `json:"id"`
	Status string     `json:"status"`
}
