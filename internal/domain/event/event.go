package event

import (
	"time"

	"github.com/google/uuid"
)

// Attribute keys carried by flow events
const (
	AttrItemID     = "item_id"
	AttrAssignee   = "assignee"
	AttrOutcome    = "outcome"
	AttrItems      = "items"
	AttrRootCaseID = "root_case_id"
	AttrTicks      = "ticks"
)

// Event records something that happened to a case
type Event struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	CaseID     string            `json:"case_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// New creates an event with a generated ID and the current time.
// The attribute map is copied.
func New(eventType Type, caseID string, attributes map[string]string) *Event {
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}

	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		CaseID:     caseID,
		Attributes: attrs,
		Timestamp:  time.Now().UTC(),
	}
}

// With returns a copy of the event with one more attribute
func (e *Event) With(key, value string) *Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value

	return &Event{
		ID:         e.ID,
		Type:       e.Type,
		CaseID:     e.CaseID,
		Attributes: attrs,
		Timestamp:  e.Timestamp,
	}
}

// Attr returns an attribute value, or "" when absent
func (e *Event) Attr(key string) string {
	return e.Attributes[key]
}
