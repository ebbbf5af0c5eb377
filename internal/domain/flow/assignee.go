package flow

// Assignee is an optional user filter for work item lookups.
// The zero value matches items of every owner.
type Assignee struct {
	userID string
	set    bool
}

// AnyAssignee returns a filter that matches every item regardless of owner.
func AnyAssignee() Assignee {
	return Assignee{}
}

// AssignedTo returns a filter restricted to the given user.
// An empty user ID is treated as no filter.
func AssignedTo(userID string) Assignee {
	if userID == "" {
		return Assignee{}
	}
	return Assignee{userID: userID, set: true}
}

// Get returns the user ID and whether a filter is present.
func (a Assignee) Get() (string, bool) {
	return a.userID, a.set
}

// String returns the user ID or "*" when unfiltered.
func (a Assignee) String() string {
	if !a.set {
		return "*"
	}
	return a.userID
}
