package flow

import "errors"

var (
	// ErrInvalidTimeout is returned when a wait timeout is not a positive number
	// of seconds or exceeds the configured maximum.
	ErrInvalidTimeout = errors.New("timeout must be a positive number of seconds")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("poll interval must be positive")

	// ErrHierarchyTooDeep is returned when walking parent cases exceeds the
	// configured depth bound.
	ErrHierarchyTooDeep = errors.New("case hierarchy exceeds maximum depth")

	// ErrCaseNotFound is returned when a case does not exist
	ErrCaseNotFound = errors.New("case not found")

	// ErrItemNotFound is returned when a work item does not exist
	ErrItemNotFound = errors.New("work item not found")

	// ErrItemNotActive is returned when completing an item that is already closed
	ErrItemNotActive = errors.New("work item is not active")
)
