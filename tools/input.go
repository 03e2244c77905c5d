package tools

import (
	"bytes"
	"regexp"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/secbridge/secquery/cliexec"
)

// Tool arguments come from an LLM, which occasionally wraps JSON in prose or
// code fences. Decoding is therefore lenient: fences and surrounding text are
// trimmed before a forgiving JSON parse. Validation afterwards is strict.

var validate = newValidator()

var (
	reCVE   = regexp.MustCompile(`^CVE-\d{4}-\d+$`)
	reEC2ID = regexp.MustCompile(`^i-[a-f0-9]+$`)
	reSGID  = regexp.MustCompile(`^sg-[a-f0-9]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Domain formats shared by the wrapped CLIs.
	_ = v.RegisterValidation("cve", func(fl validator.FieldLevel) bool {
		return reCVE.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("ec2id", func(fl validator.FieldLevel) bool {
		return reEC2ID.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("sgid", func(fl validator.FieldLevel) bool {
		return reSGID.MatchString(fl.Field().String())
	})
	return v
}

// UnmarshalInput decodes LLM-authored JSON arguments into req.
func UnmarshalInput(input string, req any) error {
	bs := cliexec.TrimToJSON(trimBackticks([]byte(input)))
	if len(bytes.TrimSpace(bs)) == 0 {
		// No arguments at all is legal; required-field checks run later.
		return nil
	}
	if err := ljson.Unmarshal(bs, req); err != nil {
		return errors.WithMessagef(cliexec.ErrInvalidArgument,
			"failed to unmarshal input: check the schema and try again: %s", err.Error())
	}
	return nil
}

// ValidateInput enforces the declared argument schema: required fields, value
// domains and mutual-exclusion rules. Must pass before a command is built.
func ValidateInput(req any) error {
	if err := validate.Struct(req); err != nil {
		return errors.WithMessagef(cliexec.ErrInvalidArgument, "%s", err.Error())
	}
	return nil
}

var backtick = []byte("```")

// trimBackticks removes a surrounding ```json ... ``` fence if present.
func trimBackticks(bs []byte) []byte {
	start := bytes.Index(bs, backtick)
	if start == -1 {
		return bs
	}
	start += len(backtick)
	for i := start; i < len(bs) && bs[i] != '{' && bs[i] != '['; i++ {
		if bs[i] == '\n' {
			start = i + 1
			break
		}
	}
	rest := bs[start:]
	end := bytes.LastIndex(rest, backtick)
	if end == -1 {
		return rest
	}
	return bytes.TrimSpace(rest[:end])
}
