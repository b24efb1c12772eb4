package services

import "errors"

// Failure classes the controllers map onto HTTP codes. Services wrap these
// with fmt.Errorf("...: %w", ...) so callers can errors.Is on the class while
// keeping a human-readable message.
var (
	// ErrNotFound: referenced summary/entry/request id does not exist -> 404.
	ErrNotFound = errors.New("record not found")

	// ErrStateConflict: the record is not in the precondition state
	// ("already processed" / "not pending approval") -> 400, no mutation.
	ErrStateConflict = errors.New("invalid state for this action")

	// ErrForbidden: actor branch does not match the record branch -> 403.
	ErrForbidden = errors.New("branch access denied")

	// ErrValidation: malformed or missing input -> 422.
	ErrValidation = errors.New("validation failed")

	// ErrApplyFailed: the approval's schedule side effect could not be
	// realized; the whole decision is rolled back -> 500.
	ErrApplyFailed = errors.New("approved change could not be applied")
)
