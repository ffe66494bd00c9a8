package maps

import (
	"errors"
	"fmt"

	"tilespawn.dev/internal/protocol"
)

// LookupError is returned by the Registry lookups. Code is a protocol error code.
type LookupError struct {
	Code    string
	MapName string
	Detail  string
	Err     error
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("%s: map %q: %s", e.Code, e.MapName, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LookupError) Unwrap() error { return e.Err }

// ErrorCode extracts the protocol code carried by err, or E_INTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code
	}
	return protocol.ErrInternal
}
