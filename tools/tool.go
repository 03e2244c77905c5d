// Package tools defines the tool-calling surface: the ITool interface every
// wrapped CLI operation implements, lenient decoding and validation of
// caller-supplied arguments, and the dispatch registry that maps declared
// tool names to implementations.
package tools

import (
	"context"
)

// ITool is a single read-only query an LLM agent can invoke.
type ITool interface {
	// Name returns the name of the tool as advertised in the catalog.
	Name() string
	// Description returns the human-readable description of the tool,
	// to be used in the prompt. Should not exceed LLM model limit.
	Description() string
	// Parameters returns the JSON-schema definition of the tool arguments.
	Parameters() any

	// Call executes the tool with JSON-encoded arguments and returns the
	// JSON-encoded normalized response. Argument decoding or validation
	// failures return cliexec.ErrInvalidArgument without spawning a process.
	Call(context.Context, string) (string, error)
}

// Tool is a typed tool with structured input and output.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}
