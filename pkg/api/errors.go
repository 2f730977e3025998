package api

import "fmt"

// AuthError is a user-correctable authentication failure (bad credentials,
// duplicate signup). Message comes verbatim from the remote service.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// RemoteError is a failure payload reported by the remote service on any
// non-auth endpoint. Message is passed through verbatim.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote service returned status %d", e.StatusCode)
}

// TransportError wraps a network-level failure. Retryable by repeating the
// user action.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
