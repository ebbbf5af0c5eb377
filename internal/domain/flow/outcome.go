// Package flow holds the value types produced when resolving the next work
// items of a case: the three-way Outcome, the optional Assignee filter and the
// single-pass Snapshot.
package flow

// OutcomeKind tags the shape of an Outcome.
type OutcomeKind int

const (
	// OutcomeNextItems means one or more matching work items were found.
	OutcomeNextItems OutcomeKind = iota + 1

	// OutcomeEnded means the root case completed before any item appeared.
	OutcomeEnded

	// OutcomeTimedOut means neither happened before the deadline.
	OutcomeTimedOut
)

// String returns the kind name used in logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNextItems:
		return "NEXT_ITEMS"
	case OutcomeEnded:
		return "ENDED"
	case OutcomeTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of a bounded wait.
// Only NextItems outcomes carry item identifiers.
type Outcome struct {
	kind  OutcomeKind
	items []string
}

// NextItems returns an outcome carrying the given item identifiers in order.
// An empty list is not a valid match and yields a TimedOut outcome instead.
func NextItems(ids []string) Outcome {
	if len(ids) == 0 {
		return TimedOut()
	}
	items := make([]string, len(ids))
	copy(items, ids)
	return Outcome{kind: OutcomeNextItems, items: items}
}

// Ended returns the outcome for a completed root case.
func Ended() Outcome {
	return Outcome{kind: OutcomeEnded}
}

// TimedOut returns the outcome for an expired deadline.
func TimedOut() Outcome {
	return Outcome{kind: OutcomeTimedOut}
}

// Kind returns the outcome tag.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Items returns a copy of the matched item identifiers.
func (o Outcome) Items() []string {
	if len(o.items) == 0 {
		return nil
	}
	items := make([]string, len(o.items))
	copy(items, o.items)
	return items
}

func (o Outcome) IsNextItems() bool { return o.kind == OutcomeNextItems }
func (o Outcome) IsEnded() bool     { return o.kind == OutcomeEnded }
func (o Outcome) IsTimedOut() bool  { return o.kind == OutcomeTimedOut }

// String implements fmt.Stringer.
func (o Outcome) String() string {
	return o.kind.String()
}
