package internal

import "golang.org/x/term"

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether stream is a file attached to a terminal.
// In-memory readers and writers, as used by tests, are never terminals.
func IsTerminal(stream any) bool {
	f, ok := stream.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
