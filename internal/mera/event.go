package mera

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ResolveRequest asks where a variable is stored at a validity time.
type ResolveRequest struct {
	Variable  string    `json:"variable"`
	ValidTime time.Time `json:"valid_time"`
}

// ParseRequest decodes a request from a raw message. A missing valid_time
// falls back to the message timestamp.
func ParseRequest(raw RawEvent) (ResolveRequest, error) {
	var req ResolveRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return ResolveRequest{}, fmt.Errorf("parse resolve request: %w", err)
	}
	req.Variable = strings.TrimSpace(req.Variable)
	if req.Variable == "" {
		return ResolveRequest{}, newError(KindMalformedName, "", "request has no variable")
	}
	if req.ValidTime.IsZero() {
		req.ValidTime = raw.Timestamp
	}
	if req.ValidTime.IsZero() {
		return ResolveRequest{}, fmt.Errorf("parse resolve request: no valid_time for %q", req.Variable)
	}
	req.ValidTime = req.ValidTime.UTC()
	return req, nil
}

// ResolvedLocation is the wire form of a Location.
type ResolvedLocation struct {
	Variable      string    `json:"variable"`
	Code          Code      `json:"code"`
	File          string    `json:"file"`
	Path          string    `json:"path"`
	LocalPath     string    `json:"local_path,omitempty"` // set when the service has a local archive root
	Stream        Stream    `json:"stream"`
	ValidTime     time.Time `json:"valid_time"`
	BaseTime      time.Time `json:"base_time"`
	LeadTimeHours int       `json:"lead_time_hours"`
	Index         int       `json:"index"`
	// Present is nil when no inventory was consulted.
	Present    *bool     `json:"present,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// NewResolvedLocation converts loc to its wire form stamped with the package clock.
func NewResolvedLocation(loc Location) ResolvedLocation {
	return ResolvedLocation{
		Variable:      loc.Variable.String(),
		Code:          loc.Code,
		File:          loc.File.String(),
		Path:          loc.PathFromRoot(),
		Stream:        loc.File.Stream,
		ValidTime:     loc.ValidTime,
		BaseTime:      loc.BaseTime,
		LeadTimeHours: int(loc.LeadTime / time.Hour),
		Index:         loc.Index,
		ResolvedAt:    Now(),
	}
}

// WithPresence records whether the file was found in an inventory.
func (r ResolvedLocation) WithPresence(present bool) ResolvedLocation {
	r.Present = &present
	return r
}

// SerializeLocation marshals a resolved location into a sink message keyed
// by archive file, so requests for the same file land on one partition.
func SerializeLocation(r ResolvedLocation) (OutputEvent, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize location: %w", err)
	}
	return OutputEvent{
		Key:   []byte(r.File),
		Value: data,
		Headers: map[string]string{
			"stream":      string(r.Stream),
			"resolved_at": r.ResolvedAt.Format(time.RFC3339),
		},
	}, nil
}
