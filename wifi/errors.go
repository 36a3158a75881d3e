package wifi

import (
	"errors"
	"fmt"
)

var (
	ErrNotSupported     = errors.New("not supported")
	ErrNotFound         = errors.New("not found")
	ErrNotAvailable     = errors.New("not available")
	ErrOperationFailed  = errors.New("operation failed")
	ErrWirelessDisabled = errors.New("wireless is disabled")

	ErrAddNetworkProfileFailed = errors.New("failed to add network profile")
	ErrFailedToConnect         = errors.New("failed to connect")
	ErrFailedToDisconnect      = errors.New("failed to disconnect")
)

// ErrorKind classifies a ConnectionError.
type ErrorKind int

const (
	// KindOther wraps a lower-level error, such as a failed radio query or
	// ErrWirelessDisabled.
	KindOther ErrorKind = iota
	KindAddNetworkProfileFailed
	KindFailedToConnect
	KindFailedToDisconnect
)

func (k ErrorKind) String() string {
	switch k {
	case KindAddNetworkProfileFailed:
		return "add network profile failed"
	case KindFailedToConnect:
		return "failed to connect"
	case KindFailedToDisconnect:
		return "failed to disconnect"
	default:
		return "other"
	}
}

// ConnectionError is returned by Connect and Disconnect when the mechanism
// itself broke. A connect attempt that ran but did not associate is not an
// error.
type ConnectionError struct {
	Kind ErrorKind
	// Detail is the description of the underlying OS error, if any.
	Detail string
	Err    error
}

func (e *ConnectionError) Error() string {
	switch {
	case e.Kind == KindOther && e.Err != nil:
		return e.Err.Error()
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind, so callers can use
// errors.Is(err, ErrFailedToConnect) and friends.
func (e *ConnectionError) Is(target error) bool {
	switch e.Kind {
	case KindAddNetworkProfileFailed:
		return target == ErrAddNetworkProfileFailed
	case KindFailedToConnect:
		return target == ErrFailedToConnect
	case KindFailedToDisconnect:
		return target == ErrFailedToDisconnect
	}
	return false
}

func otherError(err error) error {
	return &ConnectionError{Kind: KindOther, Err: err}
}
