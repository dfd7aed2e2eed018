package params

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry - неисправимая порча конфигурации (фатально, матч не стартует).
var ErrInvalidGeometry = errors.New("invalid field geometry")

// ConfigurationError - битый или неизвестный параметр. Не фатальна:
// логируется и заменяется значением по умолчанию.
type ConfigurationError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("parameter %s=%v: %s", e.Key, e.Value, e.Reason)
}
