package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrDuplicateType = errors.New("duplicate block type")
	ErrUnknownType   = errors.New("unknown block type")
	ErrInvalidType   = errors.New("invalid block type")
)

// ErrorCode categorizes catalog errors.
type ErrorCode string

const (
	ErrCodeDuplicateType ErrorCode = "DUPLICATE_TYPE"
	ErrCodeUnknownType   ErrorCode = "UNKNOWN_TYPE"
	ErrCodeInvalidType   ErrorCode = "INVALID_TYPE"
)

// Error is returned by Register and Lookup.
type Error struct {
	Code    ErrorCode
	TypeID  string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.TypeID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.TypeID)
}

// Is maps codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeDuplicateType:
		return target == ErrDuplicateType
	case ErrCodeUnknownType:
		return target == ErrUnknownType
	case ErrCodeInvalidType:
		return target == ErrInvalidType
	}
	return false
}
