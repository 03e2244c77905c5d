package lacework

import (
	"context"
	"reflect"
	"time"

	"github.com/secbridge/secquery/cliexec"
	"github.com/secbridge/secquery/config"
	"github.com/secbridge/secquery/schema"
	"github.com/secbridge/secquery/tools"
)

const ListCVEsToolName = "list_cves"

// Documented defaults: a missing time-range start means "24 hours before
// now"; a missing end means "now". The builder always passes both so the
// invocation does not depend on CLI-side defaults.
const (
	defaultStartTime = "-24h"
	defaultEndTime   = "now"
)

// ListCVEsRequest lists the arguments for the list_cves tool.
type ListCVEsRequest struct {
	SeverityFilter string   `json:"severity_filter,omitempty" jsonschema:"title=Severity Filter,description=Filter by severity,enum=Critical,enum=High,enum=Medium,enum=Low" validate:"omitempty,oneof=Critical High Medium Low"`
	MinCVSSScore   *float64 `json:"min_cvss_score,omitempty" jsonschema:"title=Minimum CVSS Score,description=Minimum CVSS score between 0.0 and 10.0,minimum=0,maximum=10" validate:"omitempty,gte=0,lte=10"`
	StartTime      string   `json:"start_time,omitempty" jsonschema:"title=Start Time,description=Start of the time range; defaults to -24h. Examples: -7d or 2024-01-01T00:00:00Z"`
	EndTime        string   `json:"end_time,omitempty" jsonschema:"title=End Time,description=End of the time range; defaults to now"`
	IncludeRaw     bool     `json:"include_raw,omitempty" jsonschema:"title=Include Raw,description=Attach the unmodified CLI payload for debugging,default=false"`
}

// ListCVEsTool lists all CVEs found on hosts in the environment.
type ListCVEsTool struct {
	name        string
	description string
	params      any

	binary  string
	timeout time.Duration
	runner  cliexec.Runner
}

var _ tools.Tool[ListCVEsRequest, CVEList] = (*ListCVEsTool)(nil)

func NewListCVEsTool(svc config.Service) *ListCVEsTool {
	return &ListCVEsTool{
		name: ListCVEsToolName,
		description: "List all CVEs found in hosts in your environment. " +
			"Returns CVE ID, severity, CVSS scores, affected packages, and host count. " +
			"Optionally filter by severity level (Critical, High, Medium, Low) or CVSS threshold.",
		params:  schema.MustParameters(reflect.TypeOf(ListCVEsRequest{})),
		binary:  svc.Binary,
		timeout: svc.Timeout(),
		runner:  cliexec.Run,
	}
}

// WithRunner substitutes the process runner. Tests only.
func (t *ListCVEsTool) WithRunner(r cliexec.Runner) *ListCVEsTool {
	t.runner = r
	return t
}

func (t *ListCVEsTool) Name() string        { return t.name }
func (t *ListCVEsTool) Description() string { return t.description }
func (t *ListCVEsTool) Parameters() any     { return t.params }

func (t *ListCVEsTool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t.Run, input)
}

func (t *ListCVEsTool) Run(ctx context.Context, req *ListCVEsRequest) (*CVEList, error) {
	if err := tools.ValidateInput(req); err != nil {
		return nil, err
	}

	filters := Filters{
		SeverityFilter: req.SeverityFilter,
		MinCVSSScore:   req.MinCVSSScore,
		StartTime:      orDefault(req.StartTime, defaultStartTime),
		EndTime:        orDefault(req.EndTime, defaultEndTime),
	}

	inv := buildListCVEsInvocation(t.binary, t.timeout, filters.StartTime, filters.EndTime)
	res, err := t.runner(ctx, inv)
	if err != nil {
		return nil, err
	}
	payload, err := cliexec.Parse(res.Stdout)
	if err != nil {
		return nil, err
	}

	out, err := Normalize(SchemaCVEList, payload, NormalizeOptions{
		Filters:    filters,
		IncludeRaw: req.IncludeRaw,
	})
	if err != nil {
		return nil, err
	}
	return out.(*CVEList), nil
}

// buildListCVEsInvocation is pure: the same inputs always yield the same
// invocation. Machine-readable output is always requested.
func buildListCVEsInvocation(binary string, timeout time.Duration, start, end string) cliexec.Invocation {
	return cliexec.Invocation{
		Executable: binary,
		Args: []string{
			"vulnerability", "host", "list-cves",
			"--start", start,
			"--end", end,
			"--json",
		},
		Timeout: timeout,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
