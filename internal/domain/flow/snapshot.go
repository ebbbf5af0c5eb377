package flow

// Snapshot is the result of a single non-blocking search over a case hierarchy.
type Snapshot struct {
	// Items are the active work item IDs across the ancestor set, after the
	// assignee filter has been applied.
	Items []string

	// RootEnded is true when the root case's history state is COMPLETED.
	RootEnded bool

	// Ancestors lists the starting case followed by each parent up to the root.
	Ancestors []string
}

// Root returns the top-most case of the walk.
func (s Snapshot) Root() string {
	if len(s.Ancestors) == 0 {
		return ""
	}
	return s.Ancestors[len(s.Ancestors)-1]
}

// Outcome classifies the snapshot. Items take precedence over RootEnded, and
// a snapshot with neither reports ok=false.
func (s Snapshot) Outcome() (Outcome, bool) {
	switch {
	case len(s.Items) > 0:
		return NextItems(s.Items), true
	case s.RootEnded:
		return Ended(), true
	default:
		return Outcome{}, false
	}
}
