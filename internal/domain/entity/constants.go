package entity

// Case history states
const (
	CaseStateActive               = "ACTIVE"
	CaseStateSuspended            = "SUSPENDED"
	CaseStateCompleted            = "COMPLETED"
	CaseStateExternallyTerminated = "EXTERNALLY_TERMINATED"
	CaseStateInternallyTerminated = "INTERNALLY_TERMINATED"
)

// Work item status constants
const (
	ItemStatusActive    = "ACTIVE"
	ItemStatusCompleted = "COMPLETED"
)

// IsTerminalState reports whether a history state closes the case.
func IsTerminalState(state string) bool {
	switch state {
	case CaseStateCompleted, CaseStateExternallyTerminated, CaseStateInternallyTerminated:
		return true
	}
	return false
}
