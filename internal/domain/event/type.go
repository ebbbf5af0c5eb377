package event

// Type identifies the type of domain event
type Type string

const (
	// TypeItemCompleted is raised after a work item was closed
	TypeItemCompleted Type = "item.completed"

	// TypeNextResolved is raised when a bounded wait returns an outcome
	TypeNextResolved Type = "flow.next_resolved"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeItemCompleted, TypeNextResolved:
		return true
	default:
		return false
	}
}
