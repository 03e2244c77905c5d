package lacework

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/secbridge/secquery/cliexec"
)

// The CLI wraps result rows in a {"data":[...]} envelope; older releases
// emitted a bare array. Numeric fields arrive as numbers, numeric strings,
// empty strings or null depending on the collector version, so the native
// types coerce all of those.

type nativeCVE struct {
	CVEID          string    `json:"cveId"`
	Severity       string    `json:"severity"`
	CVSSScore      flexFloat `json:"cvssScore"`
	PackageName    string    `json:"packageName"`
	PackageVersion string    `json:"packageVersion"`
	OSName         string    `json:"osName"`
	HostCount      flexFloat `json:"hostCount"`
	Status         string    `json:"status"`
}

type nativeHost struct {
	MachineID  flexString `json:"mid"`
	Hostname   string     `json:"hostname"`
	ExternalIP string     `json:"externalIp"`
	InternalIP string     `json:"internalIp"`
	OS         string     `json:"os"`
	Provider   string     `json:"provider"`
	InstanceID string     `json:"instanceId"`
	Status     string     `json:"status"`
}

// decodeRows decodes the payload's row list into out, accepting both the
// enveloped and the bare-array shapes. An empty payload or a missing data
// member leaves out untouched.
func decodeRows(payload *cliexec.Payload, out any) error {
	if payload.IsEmpty() {
		return nil
	}
	raw := bytes.TrimSpace(payload.Raw())
	if raw[0] == '[' {
		return payload.Decode(out)
	}
	env := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := payload.Decode(&env); err != nil {
		return err
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.WithMessagef(cliexec.ErrMalformedOutput, "unexpected payload shape: %s", err.Error())
	}
	return nil
}

// flexFloat decodes a number that may arrive as a JSON number, a numeric
// string, an empty string, or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(bs []byte) error {
	bs = bytes.TrimSpace(bs)
	if len(bs) == 0 || string(bs) == "null" {
		*f = 0
		return nil
	}
	if bs[0] == '"' {
		var s string
		if err := json.Unmarshal(bs, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(bs, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes a value that may arrive as a JSON string or a number
// (machine ids are numeric in some CLI versions).
type flexString string

func (s *flexString) UnmarshalJSON(bs []byte) error {
	bs = bytes.TrimSpace(bs)
	if len(bs) == 0 || string(bs) == "null" {
		*s = ""
		return nil
	}
	if bs[0] == '"' {
		var v string
		if err := json.Unmarshal(bs, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(bs, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}
