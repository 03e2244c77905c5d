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

const ListHostsByCVEToolName = "list_hosts_by_cve"

// ListHostsByCVERequest lists the arguments for the list_hosts_by_cve tool.
type ListHostsByCVERequest struct {
	CVEID      string `json:"cve_id" jsonschema:"title=CVE ID,description=CVE identifier such as CVE-2024-1234,pattern=^CVE-[0-9]{4}-[0-9]+$" validate:"required,cve"`
	StartTime  string `json:"start_time,omitempty" jsonschema:"title=Start Time,description=Start of the time range; defaults to -24h"`
	EndTime    string `json:"end_time,omitempty" jsonschema:"title=End Time,description=End of the time range; defaults to now"`
	IncludeRaw bool   `json:"include_raw,omitempty" jsonschema:"title=Include Raw,description=Attach the unmodified CLI payload for debugging,default=false"`
}

// ListHostsByCVETool lists the hosts that contain a specific CVE, for
// identifying which instances need patching or remediation.
type ListHostsByCVETool struct {
	name        string
	description string
	params      any

	binary  string
	timeout time.Duration
	runner  cliexec.Runner
}

var _ tools.Tool[ListHostsByCVERequest, HostList] = (*ListHostsByCVETool)(nil)

func NewListHostsByCVETool(svc config.Service) *ListHostsByCVETool {
	return &ListHostsByCVETool{
		name: ListHostsByCVEToolName,
		description: "List all hosts that contain a specific CVE ID. " +
			"Returns machine ID, hostname, IP addresses, OS, cloud provider, instance ID, and status. " +
			"Useful for identifying which instances need patching or remediation.",
		params:  schema.MustParameters(reflect.TypeOf(ListHostsByCVERequest{})),
		binary:  svc.Binary,
		timeout: svc.Timeout(),
		runner:  cliexec.Run,
	}
}

// WithRunner substitutes the process runner. Tests only.
func (t *ListHostsByCVETool) WithRunner(r cliexec.Runner) *ListHostsByCVETool {
	t.runner = r
	return t
}

func (t *ListHostsByCVETool) Name() string        { return t.name }
func (t *ListHostsByCVETool) Description() string { return t.description }
func (t *ListHostsByCVETool) Parameters() any     { return t.params }

func (t *ListHostsByCVETool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t.Run, input)
}

func (t *ListHostsByCVETool) Run(ctx context.Context, req *ListHostsByCVERequest) (*HostList, error) {
	if err := tools.ValidateInput(req); err != nil {
		return nil, err
	}

	start := orDefault(req.StartTime, defaultStartTime)
	end := orDefault(req.EndTime, defaultEndTime)

	inv := buildListHostsInvocation(t.binary, t.timeout, req.CVEID, start, end)
	res, err := t.runner(ctx, inv)
	if err != nil {
		return nil, err
	}
	payload, err := cliexec.Parse(res.Stdout)
	if err != nil {
		return nil, err
	}

	out, err := Normalize(SchemaHostList, payload, NormalizeOptions{
		CVEID:      req.CVEID,
		IncludeRaw: req.IncludeRaw,
	})
	if err != nil {
		return nil, err
	}
	return out.(*HostList), nil
}

func buildListHostsInvocation(binary string, timeout time.Duration, cveID, start, end string) cliexec.Invocation {
	return cliexec.Invocation{
		Executable: binary,
		Args: []string{
			"vulnerability", "host", "list-hosts", cveID,
			"--start", start,
			"--end", end,
			"--json",
		},
		Timeout: timeout,
	}
}
