package emitter

import (
	"errors"
	"fmt"

	"github.com/roach88/blockc/internal/profile"
)

// Sentinel errors for errors.Is checks.
var (
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrUnknownTarget    = profile.ErrUnknownTarget
)

// ErrorCode categorizes emission errors.
type ErrorCode string

const (
	ErrCodeUnknownBlockType ErrorCode = "UNKNOWN_BLOCK_TYPE"
	ErrCodeUnknownTarget    ErrorCode = "UNKNOWN_TARGET"
)

// Error aborts a compile. No partial program is returned with it.
type Error struct {
	Code ErrorCode

	// BlockID names the offending instance, when there is one.
	BlockID string

	// Type is the block type id involved.
	Type string

	Message string
}

func (e *Error) Error() string {
	if e.BlockID != "" {
		return fmt.Sprintf("%s: %s (block=%s type=%s)", e.Code, e.Message, e.BlockID, e.Type)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is maps codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeUnknownBlockType:
		return target == ErrUnknownBlockType
	case ErrCodeUnknownTarget:
		return target == ErrUnknownTarget
	}
	return false
}

func unknownBlock(id, typ, format string, args ...any) *Error {
	return &Error{Code: ErrCodeUnknownBlockType, BlockID: id, Type: typ, Message: fmt.Sprintf(format, args...)}
}
