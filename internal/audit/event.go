// Package audit records CMS inspections in a tamper-evident log.
//
// Each event is one JSON line. Events are chained: every event carries the
// hash of its predecessor, and its own hash covers its canonical JSON plus
// that predecessor hash, so editing or removing a line breaks the chain.
//
// Rules:
//   - A failed audit write fails the inspection that triggered it
//   - The inspected bytes are never logged, only their SHA-256 digest
//   - All timestamps are UTC
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// EventType names the audited operation.
type EventType string

const (
	// EventCMSInspect is written for every interpretation request.
	EventCMSInspect EventType = "CMS_INSPECT"

	// EventChainVerified is written after a successful chain verification.
	EventChainVerified EventType = "AUDIT_VERIFY"
)

// Result is the outcome of an audited operation.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Actor is who asked for the operation.
type Actor struct {
	Type string `json:"type"`           // "user" (CLI) or "service" (HTTP)
	ID   string `json:"id"`             // username or remote address
	Host string `json:"host,omitempty"` // host that ran the operation
}

// Object is the inspected input.
type Object struct {
	Type   string `json:"type"`             // "cms" or "audit_log"
	Digest string `json:"digest,omitempty"` // sha256:<hex> of the input bytes
	Size   int    `json:"size,omitempty"`   // input length in bytes
	Path   string `json:"path,omitempty"`   // file name when read from disk
}

// Context carries the interpretation details.
type Context struct {
	ContentType string `json:"content_type,omitempty"` // detected variant
	Mode        string `json:"mode,omitempty"`         // cms | cades
	Source      string `json:"source,omitempty"`       // cli | api
	RequestID   string `json:"request_id,omitempty"`
	Reason      string `json:"reason,omitempty"` // failure reason
}

// Event is a single audit log entry.
type Event struct {
	EventType EventType `json:"event_type"`
	Timestamp string    `json:"timestamp"` // RFC3339 UTC
	Actor     Actor     `json:"actor"`
	Object    Object    `json:"object"`
	Context   Context   `json:"context,omitempty"`
	Result    Result    `json:"result"`
	HashPrev  string    `json:"hash_prev"`
	Hash      string    `json:"hash"`
}

// NewEvent creates an event stamped with the current time and local user.
func NewEvent(eventType EventType, result Result) *Event {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	if username == "" {
		username = "unknown"
	}

	return &Event{
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Actor: Actor{
			Type: "user",
			ID:   username,
			Host: hostname,
		},
		Result: result,
	}
}

// WithObject sets the object field.
func (e *Event) WithObject(obj Object) *Event {
	e.Object = obj
	return e
}

// WithContext sets the context field.
func (e *Event) WithContext(ctx Context) *Event {
	e.Context = ctx
	return e
}

// WithActor overrides the default actor.
func (e *Event) WithActor(actor Actor) *Event {
	e.Actor = actor
	return e
}

// Validate checks that required fields are present.
func (e *Event) Validate() error {
	switch {
	case e.EventType == "":
		return fmt.Errorf("event_type is required")
	case e.Timestamp == "":
		return fmt.Errorf("timestamp is required")
	case e.Actor.Type == "" || e.Actor.ID == "":
		return fmt.Errorf("actor type and id are required")
	case e.Result == "":
		return fmt.Errorf("result is required")
	}
	return nil
}

// CanonicalJSON is the hashed form of the event: every field except Hash.
func (e *Event) CanonicalJSON() ([]byte, error) {
	type hashed struct {
		EventType EventType `json:"event_type"`
		Timestamp string    `json:"timestamp"`
		Actor     Actor     `json:"actor"`
		Object    Object    `json:"object"`
		Context   Context   `json:"context,omitempty"`
		Result    Result    `json:"result"`
		HashPrev  string    `json:"hash_prev"`
	}
	return json.Marshal(hashed{
		EventType: e.EventType,
		Timestamp: e.Timestamp,
		Actor:     e.Actor,
		Object:    e.Object,
		Context:   e.Context,
		Result:    e.Result,
		HashPrev:  e.HashPrev,
	})
}

// JSON returns the full event as JSON.
func (e *Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Digest returns the sha256:<hex> digest used in Object.Digest.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return HashPrefix + hex.EncodeToString(sum[:])
}
