package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrUnknownRepo        = errors.New("unknown repo")
	ErrUnknownRef         = errors.New("unknown ref")
	ErrNoBuilds           = errors.New("no builds found")
)

// ServiceError is an error payload returned by an upstream service. Its message is shown to users as is.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
