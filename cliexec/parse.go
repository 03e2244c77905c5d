package cliexec

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Payload is the decoded structured value from a command's stdout. It keeps
// the raw JSON so normalizers can decode into their own native types and so
// the optional raw/debug field can echo the output unmodified.
type Payload struct {
	raw []byte
}

// Parse decodes captured stdout as JSON. Some CLIs print update banners or
// sudo warnings around the payload, so anything before the first '{' or '['
// and after the last '}' or ']' is trimmed first. Empty stdout is a valid
// "no results" payload, not an error. A decode failure returns
// ErrMalformedOutput, distinct from execution failure, so callers can tell
// "ran but returned garbage" apart from "failed to run".
func Parse(stdout []byte) (*Payload, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return &Payload{}, nil
	}
	trimmed = TrimToJSON(trimmed)
	if !json.Valid(trimmed) {
		return nil, errors.WithMessage(ErrMalformedOutput, "stdout is not valid JSON")
	}
	return &Payload{raw: trimmed}, nil
}

// IsEmpty reports whether the command produced no payload at all.
func (p *Payload) IsEmpty() bool {
	return p == nil || len(p.raw) == 0
}

// Raw returns the unmodified JSON bytes, for the opt-in debug field.
func (p *Payload) Raw() json.RawMessage {
	if p.IsEmpty() {
		return nil
	}
	return json.RawMessage(p.raw)
}

// Decode unmarshals the payload into v. Decoding an empty payload is a no-op.
func (p *Payload) Decode(v any) error {
	if p.IsEmpty() {
		return nil
	}
	if err := json.Unmarshal(p.raw, v); err != nil {
		return errors.WithMessagef(ErrMalformedOutput, "unexpected payload shape: %s", err.Error())
	}
	return nil
}

// TrimToJSON strips any text before the first JSON opening token and after
// the last closing one. Arrays and objects are both handled.
func TrimToJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	switch {
	case startObject == -1 && startArray == -1:
		return bs
	case startObject == -1:
		start = startArray
	case startArray == -1:
		start = startObject
	default:
		start = min(startObject, startArray)
	}

	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	end := max(endObject, endArray)
	if end < start {
		return bs[start:]
	}
	return bs[start : end+1]
}
