package job

import "errors"

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrNotJobOwner     = errors.New("job belongs to another employer")
	ErrAlreadyPromoted = errors.New("job is already promoted")
	ErrJobClosed       = errors.New("job is closed")
)
