package shaderfx

import (
	"fmt"

	"github.com/gekko3d/shaderfx/rt/params"
)

// ConfigError reports a dropped parameter key. Update keeps going after one.
type ConfigError = params.ConfigError

// PreconditionError reports missing or mismatched inputs. The call that
// returns it did no work.
type PreconditionError struct {
	Effect string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Effect, e.Reason)
}

// ResourceError reports a binding that is missing at update time.
type ResourceError struct {
	Effect   string
	Resource string
	Index    int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %s %d is nil", e.Effect, e.Resource, e.Index)
}

func preconditionf(effect, format string, args ...any) error {
	return &PreconditionError{Effect: effect, Reason: fmt.Sprintf(format, args...)}
}
