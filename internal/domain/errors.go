package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for join validation failures at the connection boundary.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrTopicRequired    = errors.New("topic is required")
	ErrInvalidPayload   = errors.New("payload must contain 'username' and 'topic'")
	ErrInvalidJSON      = errors.New("invalid JSON payload")
)
