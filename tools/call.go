package tools

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// CallTyped adapts a typed Run method to the string-in/string-out Call
// contract: lenient decode, typed run, stable JSON encode. Tool
// implementations delegate their Call to this to keep the decode behavior
// identical across services.
func CallTyped[I any, O any](ctx context.Context, run func(context.Context, *I) (*O, error), input string) (string, error) {
	var req I
	if err := UnmarshalInput(input, &req); err != nil {
		return "", err
	}
	out, err := run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}
