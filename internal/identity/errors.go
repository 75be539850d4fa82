// Where: internal/identity/errors.go
// What: Chain exhaustion error.
// Why: Surface every attempted source when authentication is unavailable.
package identity

import (
	"fmt"
	"strings"
)

// Attempt records one failed source probe.
type Attempt struct {
	Source string
	Err    error
}

// UnavailableError is returned when every source in the chain failed. Its
// message enumerates which sources were tried and why each failed.
type UnavailableError struct {
	Attempts []Attempt
}

func (e *UnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return "authentication unavailable: no credential sources configured"
	}
	var b strings.Builder
	b.WriteString("authentication unavailable: all credential sources failed:")
	for _, attempt := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", attempt.Source, attempt.Err)
	}
	return b.String()
}
