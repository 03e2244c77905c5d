// Package cliexec runs external CLI commands with a hard wall-clock bound
// and decodes their JSON output. It is the only layer that touches the OS
// process boundary; everything above it works with Invocation, Result and
// Payload values. The package holds no state between calls and is safe for
// concurrent use.
package cliexec

import (
	"strings"
	"time"
)

// DefaultTimeout bounds an Invocation that does not set its own.
const DefaultTimeout = 30 * time.Second

// Invocation is the concrete external command to run for one tool call.
// It is built deterministically from validated arguments and never carries
// secrets; the wrapped CLI resolves credentials from its own configuration.
type Invocation struct {
	Executable string
	Args       []string
	Timeout    time.Duration
}

func (inv Invocation) String() string {
	return inv.Executable + " " + strings.Join(inv.Args, " ")
}

func (inv Invocation) timeout() time.Duration {
	if inv.Timeout > 0 {
		return inv.Timeout
	}
	return DefaultTimeout
}
