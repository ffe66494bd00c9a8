package protocol

const (
	// Map lookups.
	ErrUnknownMap  = "E_UNKNOWN_MAP"
	ErrBadIndex    = "E_BAD_INDEX"
	ErrBadProperty = "E_BAD_PROPERTY"
	ErrBadRange    = "E_BAD_RANGE"

	// Config / persistence.
	ErrBadConfig = "E_BAD_CONFIG"
	ErrInternal  = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrUnknownMap:  {},
	ErrBadIndex:    {},
	ErrBadProperty: {},
	ErrBadRange:    {},
	ErrBadConfig:   {},
	ErrInternal:    {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
