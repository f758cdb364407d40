package absence

import "errors"

var (
	ErrRequestNotFound         = errors.New("absence request not found")
	ErrDuplicateForDate        = errors.New("an absence request already exists for this date")
	ErrNotPending              = errors.New("absence request has already been reviewed")
	ErrInvalidTransition       = errors.New("decision must be approved or rejected")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
	ErrSelfReview              = errors.New("you cannot review your own absence request")
)
