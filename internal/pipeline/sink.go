package pipeline

import (
	"fmt"
	"io"
)

// PrintTo returns a sink that writes each value on its own line.
// Write errors are recorded on the returned *PrintSink and stop further output.
func PrintTo[Y any](w io.Writer) (func(Y), *PrintSink) {
	ps := &PrintSink{w: w}
	return func(y Y) {
		ps.print(y)
	}, ps
}

// PrintSink tracks the state of a printing sink.
type PrintSink struct {
	w       io.Writer
	written int
	err     error
}

func (ps *PrintSink) print(v any) {
	if ps.err != nil {
		return
	}
	if _, err := fmt.Fprintln(ps.w, v); err != nil {
		ps.err = err
		return
	}
	ps.written++
}

// Written returns the number of lines written successfully.
func (ps *PrintSink) Written() int {
	return ps.written
}

// Err returns the first write error, if any.
func (ps *PrintSink) Err() error {
	return ps.err
}
