package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Start on a running engine.
	ErrAlreadyRunning = errors.New("engine already running")

	// ErrNotRunning is returned by Stop on a stopped engine.
	ErrNotRunning = errors.New("engine not running")

	// ErrIndexOutOfRange is returned by control operations addressing a
	// chain position that does not exist.
	ErrIndexOutOfRange = errors.New("effect index out of range")

	// ErrNilEffect is returned when a nil effect is added to the chain.
	ErrNilEffect = errors.New("nil effect")
)

// ConfigError reports an invalid stream configuration. It is fatal at
// Start: the stream is never opened and the engine stays stopped.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
