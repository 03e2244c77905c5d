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

const GetCriticalCVEsToolName = "get_critical_cves"

// DefaultCriticalThreshold is the CVSS score at which a CVE is considered
// Critical when the caller does not supply a threshold.
const DefaultCriticalThreshold = 9.0

// GetCriticalCVEsRequest lists the arguments for the get_critical_cves tool.
type GetCriticalCVEsRequest struct {
	MinCVSSScore *float64 `json:"min_cvss_score,omitempty" jsonschema:"title=Minimum CVSS Score,description=Minimum CVSS score threshold; defaults to 9.0 for Critical,minimum=0,maximum=10,default=9" validate:"omitempty,gte=0,lte=10"`
	StartTime    string   `json:"start_time,omitempty" jsonschema:"title=Start Time,description=Start of the time range; defaults to -24h"`
	IncludeRaw   bool     `json:"include_raw,omitempty" jsonschema:"title=Include Raw,description=Attach the unmodified CLI payload for debugging,default=false"`
}

// GetCriticalCVEsTool returns the high-priority CVEs that need immediate
// attention, sorted by CVSS score descending.
type GetCriticalCVEsTool struct {
	name        string
	description string
	params      any

	binary  string
	timeout time.Duration
	runner  cliexec.Runner
}

var _ tools.Tool[GetCriticalCVEsRequest, CVEList] = (*GetCriticalCVEsTool)(nil)

func NewGetCriticalCVEsTool(svc config.Service) *GetCriticalCVEsTool {
	return &GetCriticalCVEsTool{
		name: GetCriticalCVEsToolName,
		description: "Get high-priority CVEs that need immediate attention. " +
			"Returns CVEs with CVSS score >= 9.0 (Critical) or as specified. " +
			"Includes host count and severity details for prioritization.",
		params:  schema.MustParameters(reflect.TypeOf(GetCriticalCVEsRequest{})),
		binary:  svc.Binary,
		timeout: svc.Timeout(),
		runner:  cliexec.Run,
	}
}

// WithRunner substitutes the process runner. Tests only.
func (t *GetCriticalCVEsTool) WithRunner(r cliexec.Runner) *GetCriticalCVEsTool {
	t.runner = r
	return t
}

func (t *GetCriticalCVEsTool) Name() string        { return t.name }
func (t *GetCriticalCVEsTool) Description() string { return t.description }
func (t *GetCriticalCVEsTool) Parameters() any     { return t.params }

func (t *GetCriticalCVEsTool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t.Run, input)
}

func (t *GetCriticalCVEsTool) Run(ctx context.Context, req *GetCriticalCVEsRequest) (*CVEList, error) {
	if err := tools.ValidateInput(req); err != nil {
		return nil, err
	}

	threshold := DefaultCriticalThreshold
	if req.MinCVSSScore != nil {
		threshold = *req.MinCVSSScore
	}
	filters := Filters{
		MinCVSSScore: &threshold,
		StartTime:    orDefault(req.StartTime, defaultStartTime),
	}

	inv := buildCriticalCVEsInvocation(t.binary, t.timeout, filters.StartTime)
	res, err := t.runner(ctx, inv)
	if err != nil {
		return nil, err
	}
	payload, err := cliexec.Parse(res.Stdout)
	if err != nil {
		return nil, err
	}

	out, err := Normalize(SchemaCVEList, payload, NormalizeOptions{
		Filters:     filters,
		SortByScore: true,
		IncludeRaw:  req.IncludeRaw,
	})
	if err != nil {
		return nil, err
	}
	return out.(*CVEList), nil
}

func buildCriticalCVEsInvocation(binary string, timeout time.Duration, start string) cliexec.Invocation {
	return cliexec.Invocation{
		Executable: binary,
		Args: []string{
			"vulnerability", "host", "list-cves",
			"--start", start,
			"--json",
		},
		Timeout: timeout,
	}
}
