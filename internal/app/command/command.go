// Package command provides the command registry and the command bus.
//
// Commands are named messages with a map payload. The registry holds a
// closed mapping from canonical command name to payload schema plus an
// alias table; every dispatch path validates against it before any side
// effect. The bus consumes submitted commands on a single control loop
// and marshals native commands onto one serialized execution context so
// the engine never observes concurrent calls.
package command

import "github.com/cockroachdb/errors"

// Kind classifies how a command executes.
type Kind int

const (
	// KindNative commands touch the shared native engine resource and are
	// marshaled onto the serialized native execution context.
	KindNative Kind = iota
	// KindPorcelain commands are implemented in terms of the queue and
	// re-dispatched native commands; they run inline on the control loop.
	KindPorcelain
)

// Command is a named command with its payload fields.
type Command struct {
	Name    string
	Payload map[string]any
}

// Errors surfaced by validation and dispatch.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidPayload = errors.New("invalid command payload")
	ErrReleased       = errors.New("instance already released")
	ErrDropped        = errors.New("command dropped under load")
)
