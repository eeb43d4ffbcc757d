package profile

import (
	"errors"
	"fmt"
)

// ErrUnknownTarget is returned for target ids with no profiles.
var ErrUnknownTarget = errors.New("unknown target")

// TargetError reports an unsupported target language.
type TargetError struct {
	Target string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("UNKNOWN_TARGET: no target %q (supported: %v)", e.Target, Targets())
}

// Is matches ErrUnknownTarget.
func (e *TargetError) Is(target error) bool {
	return target == ErrUnknownTarget
}
