package entity

import "time"

// WorkItem represents an actionable task owned by exactly one case.
// An empty Assignee means the item is unassigned.
type WorkItem struct {
	ID          string     `json:"id"`
	CaseID      string     `json:"case_id"`
	Name        string     `json:"name"`
	Assignee    string     `json:"assignee,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsActive reports whether the item can still be worked on.
func (w *WorkItem) IsActive() bool {
	return w.Status == ItemStatusActive
}
