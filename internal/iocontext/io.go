// Package iocontext provides injectable I/O streams via context for testability.
package iocontext

import (
	"context"
	"io"
	"os"
)

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer // response bodies
	ErrOut io.Writer // diagnostics, warnings, errors
	In     io.Reader // request bodies read with -i -
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

// Quiet returns a copy of io with stderr discarded and, when dropOut is
// set, stdout discarded as well.
func (s *IO) Quiet(dropOut bool) *IO {
	cp := *s
	cp.ErrOut = io.Discard
	if dropOut {
		cp.Out = io.Discard
	}
	return &cp
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
func GetIO(ctx context.Context) *IO {
	if ctx != nil {
		if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
			return streams
		}
	}
	return DefaultIO()
}
