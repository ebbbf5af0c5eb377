package entity

import "time"

// Case represents a running instance of a workflow definition.
// A case started as a sub-case of another case records that case in SuperCaseID.
type Case struct {
	ID            string    `json:"id"`
	DefinitionKey string    `json:"definition_key"`
	BusinessKey   string    `json:"business_key,omitempty"`
	SuperCaseID   string    `json:"super_case_id,omitempty"`
	StartedAt     time.Time `json:"started_at"`
}

// IsRoot reports whether the case has no parent case.
func (c *Case) IsRoot() bool {
	return c.SuperCaseID == ""
}

// CaseHistory is the historical record of a case.
// A case with no history row is still running.
type CaseHistory struct {
	CaseID  string     `json:"case_id"`
	State   string     `json:"state"`
	EndedAt *time.Time `json:"ended_at,omitempty"`
}
