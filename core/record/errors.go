package record

import "github.com/pkg/errors"

var (
	// errors
	ErrNotFound             = errors.New("record not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccessDenied         = errors.New("access denied")
	ErrThrottled            = errors.New("too many requests")
	ErrBackendUnavailable   = errors.New("backend unavailable")
)

func IsNotFound(err error) bool { return errors.Cause(err) == ErrNotFound }

func IsAuthenticationFailed(err error) bool { return errors.Cause(err) == ErrAuthenticationFailed }

func IsAccessDenied(err error) bool { return errors.Cause(err) == ErrAccessDenied }
