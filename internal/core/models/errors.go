package models

import "errors"

var (
	ErrEntityRequired   = errors.New("entity is required")
	ErrDuplicateID      = errors.New("an entity with this id already exists in the collection")
	ErrEntityOwned      = errors.New("entity already belongs to another collection")
	ErrParentCycle      = errors.New("parent assignment would create a cycle")
	ErrHandlerRequired  = errors.New("change handler is required")
	ErrNotSuspended     = errors.New("resumeEvents called without a matching suspendEvents")
	ErrUnexpectedChange = errors.New("unexpected change event payload")
)
