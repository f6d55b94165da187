package domain

import "errors"

var (
	// ErrInvalidTransition: the target status is not reachable from the
	// order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingReason: cancellation or failure without an explanation.
	ErrMissingReason = errors.New("reason is required for this status")

	// ErrConflict: the order's status changed after the caller read it.
	// Recoverable; refetch and retry.
	ErrConflict = errors.New("order status changed concurrently")

	// ErrNotPermitted: the actor's role mode does not allow the operation.
	ErrNotPermitted = errors.New("operation not permitted for this actor")

	// ErrUnknownAssignee: reassignment target is not an active staff member
	// of the required role.
	ErrUnknownAssignee = errors.New("assignee is not active staff of the required role")

	ErrOrderNotFound = errors.New("order not found")
	ErrStaffNotFound = errors.New("staff member not found")
)
