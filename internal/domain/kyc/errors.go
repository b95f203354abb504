package kyc

import "errors"

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyReviewed    = errors.New("submission already reviewed")
	ErrPendingExists      = errors.New("a pending submission already exists")
)
