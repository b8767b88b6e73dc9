package remote

import "errors"

// Error is the single failure kind of the storefront API client. Op names
// the failed operation; Err is kept for logs only.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "storefront api: " + e.Op + " failed"
	}
	return "storefront api: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsRemoteError reports whether err is, or wraps, an *Error.
func IsRemoteError(err error) bool {
	var re *Error
	return errors.As(err, &re)
}
