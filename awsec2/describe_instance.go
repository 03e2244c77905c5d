package awsec2

import (
	"context"
	"reflect"
	"time"

	"github.com/secbridge/secquery/cliexec"
	"github.com/secbridge/secquery/config"
	"github.com/secbridge/secquery/schema"
	"github.com/secbridge/secquery/tools"
)

const DescribeInstanceToolName = "describe_instance"

// DescribeInstanceRequest lists the arguments for the describe_instance tool.
type DescribeInstanceRequest struct {
	InstanceID string `json:"instance_id" jsonschema:"title=Instance ID,description=EC2 instance ID such as i-1234567890abcdef0,pattern=^i-[a-f0-9]+$" validate:"required,ec2id"`
	Region     string `json:"region,omitempty" jsonschema:"title=Region,description=AWS region such as us-east-1; uses the default CLI region when unset"`
	IncludeRaw bool   `json:"include_raw,omitempty" jsonschema:"title=Include Raw,description=Attach the unmodified CLI payload for debugging,default=false"`
}

// DescribeInstanceTool returns comprehensive metadata for one EC2 instance:
// IPs, DNS names, VPC placement, security groups, tags, IAM role and state.
type DescribeInstanceTool struct {
	name        string
	description string
	params      any

	binary  string
	timeout time.Duration
	runner  cliexec.Runner
}

var _ tools.Tool[DescribeInstanceRequest, InstanceDetail] = (*DescribeInstanceTool)(nil)

func NewDescribeInstanceTool(svc config.Service) *DescribeInstanceTool {
	return &DescribeInstanceTool{
		name: DescribeInstanceToolName,
		description: "Get comprehensive metadata for an EC2 instance by instance ID. " +
			"Returns instance details including IPs, DNS names, VPC info, security groups, " +
			"tags, IAM role, state, and more. Essential for gathering context about " +
			"vulnerable instances before onboarding to security tools.",
		params:  schema.MustParameters(reflect.TypeOf(DescribeInstanceRequest{})),
		binary:  svc.Binary,
		timeout: svc.Timeout(),
		runner:  cliexec.Run,
	}
}

// WithRunner substitutes the process runner. Tests only.
func (t *DescribeInstanceTool) WithRunner(r cliexec.Runner) *DescribeInstanceTool {
	t.runner = r
	return t
}

func (t *DescribeInstanceTool) Name() string        { return t.name }
func (t *DescribeInstanceTool) Description() string { return t.description }
func (t *DescribeInstanceTool) Parameters() any     { return t.params }

func (t *DescribeInstanceTool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t.Run, input)
}

func (t *DescribeInstanceTool) Run(ctx context.Context, req *DescribeInstanceRequest) (*InstanceDetail, error) {
	if err := tools.ValidateInput(req); err != nil {
		return nil, err
	}

	inv := buildDescribeInstancesInvocation(t.binary, t.timeout, req.InstanceID, req.Region)
	res, err := t.runner(ctx, inv)
	if err != nil {
		return nil, err
	}
	payload, err := cliexec.Parse(res.Stdout)
	if err != nil {
		return nil, err
	}

	out, err := Normalize(SchemaInstanceSummary, payload, NormalizeOptions{
		InstanceID: req.InstanceID,
		IncludeRaw: req.IncludeRaw,
	})
	if err != nil {
		return nil, err
	}
	return out.(*InstanceDetail), nil
}

// buildDescribeInstancesInvocation is pure and shared with the security-group
// resolution step. JSON output is always requested; the region flag is only
// added when the caller asked for one, otherwise the CLI default applies.
func buildDescribeInstancesInvocation(binary string, timeout time.Duration, instanceID, region string) cliexec.Invocation {
	args := []string{"ec2", "describe-instances", "--instance-ids", instanceID}
	if region != "" {
		args = append(args, "--region", region)
	}
	args = append(args, "--output", "json")
	return cliexec.Invocation{Executable: binary, Args: args, Timeout: timeout}
}
