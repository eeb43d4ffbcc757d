package workspace

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrIncompatibleConnection = errors.New("incompatible connection")
	ErrCycleDetected          = errors.New("cycle detected")
	ErrUnknownType            = errors.New("unknown block type")
	ErrNotFound               = errors.New("block not found")
	ErrInvalidField           = errors.New("invalid field value")
	ErrDuplicateID            = errors.New("duplicate block id")
	ErrInvalidTree            = errors.New("invalid workspace tree")
)

// ErrorCode categorizes workspace errors.
type ErrorCode string

const (
	ErrCodeIncompatibleConnection ErrorCode = "INCOMPATIBLE_CONNECTION"
	ErrCodeCycleDetected          ErrorCode = "CYCLE_DETECTED"
	ErrCodeUnknownType            ErrorCode = "UNKNOWN_TYPE"
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodeInvalidField           ErrorCode = "INVALID_FIELD"
	ErrCodeDuplicateID            ErrorCode = "DUPLICATE_ID"
	ErrCodeInvalidTree            ErrorCode = "INVALID_TREE"
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeIncompatibleConnection: ErrIncompatibleConnection,
	ErrCodeCycleDetected:          ErrCycleDetected,
	ErrCodeUnknownType:            ErrUnknownType,
	ErrCodeNotFound:               ErrNotFound,
	ErrCodeInvalidField:           ErrInvalidField,
	ErrCodeDuplicateID:            ErrDuplicateID,
	ErrCodeInvalidTree:            ErrInvalidTree,
}

// Error is returned by rejected workspace mutations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// BlockID is the instance the mutation concerned.
	BlockID string

	// Message is a human-readable description.
	Message string
}

func (e *Error) Error() string {
	if e.BlockID != "" {
		return fmt.Sprintf("%s: %s (block=%s)", e.Code, e.Message, e.BlockID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is maps codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	return codeSentinels[e.Code] == target
}

func newError(code ErrorCode, blockID, format string, args ...any) *Error {
	return &Error{Code: code, BlockID: blockID, Message: fmt.Sprintf(format, args...)}
}
