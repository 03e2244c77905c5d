package awsec2

import (
	"context"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/secbridge/secquery/cliexec"
	"github.com/secbridge/secquery/config"
	"github.com/secbridge/secquery/schema"
	"github.com/secbridge/secquery/tools"
	"github.com/tidwall/gjson"
)

const GetSecurityGroupsToolName = "get_security_groups"

// GetSecurityGroupsRequest lists the arguments for the get_security_groups
// tool. Exactly one of instance_id and security_group_ids must be supplied;
// the validator tags enforce both directions of that rule.
type GetSecurityGroupsRequest struct {
	InstanceID       string   `json:"instance_id,omitempty" jsonschema:"title=Instance ID,description=EC2 instance ID to resolve security groups from,pattern=^i-[a-f0-9]+$" validate:"omitempty,ec2id,excluded_with=SecurityGroupIDs"`
	SecurityGroupIDs []string `json:"security_group_ids,omitempty" jsonschema:"title=Security Group IDs,description=List of security group IDs such as sg-12345" validate:"required_without=InstanceID,excluded_with=InstanceID,omitempty,min=1,dive,sgid"`
	Region           string   `json:"region,omitempty" jsonschema:"title=Region,description=AWS region such as us-east-1; uses the default CLI region when unset"`
	IncludeRaw       bool     `json:"include_raw,omitempty" jsonschema:"title=Include Raw,description=Attach the unmodified CLI payload for debugging,default=false"`
}

// GetSecurityGroupsTool returns security group rules and configurations,
// either for explicit group ids or resolved from an instance. The instance
// path is an explicit two-step pipeline: resolve group ids first, then
// describe them, so a failure in either step is reported distinctly.
type GetSecurityGroupsTool struct {
	name        string
	description string
	params      any

	binary  string
	timeout time.Duration
	runner  cliexec.Runner
}

var _ tools.Tool[GetSecurityGroupsRequest, SecurityGroupList] = (*GetSecurityGroupsTool)(nil)

func NewGetSecurityGroupsTool(svc config.Service) *GetSecurityGroupsTool {
	return &GetSecurityGroupsTool{
		name: GetSecurityGroupsToolName,
		description: "Get detailed security group rules and configurations. Can fetch by security group IDs " +
			"or automatically extract and fetch from an instance ID. Returns inbound/outbound rules " +
			"with ports, protocols, and source/destination IPs. Critical for understanding what " +
			"services are exposed and need protection.",
		params:  schema.MustParameters(reflect.TypeOf(GetSecurityGroupsRequest{})),
		binary:  svc.Binary,
		timeout: svc.Timeout(),
		runner:  cliexec.Run,
	}
}

// WithRunner substitutes the process runner. Tests only.
func (t *GetSecurityGroupsTool) WithRunner(r cliexec.Runner) *GetSecurityGroupsTool {
	t.runner = r
	return t
}

func (t *GetSecurityGroupsTool) Name() string        { return t.name }
func (t *GetSecurityGroupsTool) Description() string { return t.description }
func (t *GetSecurityGroupsTool) Parameters() any     { return t.params }

func (t *GetSecurityGroupsTool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t.Run, input)
}

func (t *GetSecurityGroupsTool) Run(ctx context.Context, req *GetSecurityGroupsRequest) (*SecurityGroupList, error) {
	if err := tools.ValidateInput(req); err != nil {
		return nil, err
	}

	groupIDs := req.SecurityGroupIDs
	if req.InstanceID != "" {
		resolved, err := t.resolveGroupIDs(ctx, req.InstanceID, req.Region)
		if err != nil {
			return nil, errors.WithMessage(err, "resolve security groups")
		}
		groupIDs = resolved
	}

	inv := buildDescribeSecurityGroupsInvocation(t.binary, t.timeout, groupIDs, req.Region)
	res, err := t.runner(ctx, inv)
	if err != nil {
		return nil, errors.WithMessage(err, "describe security groups")
	}
	payload, err := cliexec.Parse(res.Stdout)
	if err != nil {
		return nil, err
	}

	out, err := Normalize(SchemaSecurityGroupList, payload, NormalizeOptions{
		InstanceID: req.InstanceID,
		IncludeRaw: req.IncludeRaw,
	})
	if err != nil {
		return nil, err
	}
	return out.(*SecurityGroupList), nil
}

// resolveGroupIDs is step one of the instance path: describe the instance
// and pull its attached group ids.
func (t *GetSecurityGroupsTool) resolveGroupIDs(ctx context.Context, instanceID, region string) ([]string, error) {
	inv := buildDescribeInstancesInvocation(t.binary, t.timeout, instanceID, region)
	res, err := t.runner(ctx, inv)
	if err != nil {
		return nil, err
	}
	payload, err := cliexec.Parse(res.Stdout)
	if err != nil {
		return nil, err
	}

	raw, ok := firstInstance(payload)
	if !ok {
		return nil, errors.WithMessagef(cliexec.ErrInvalidArgument, "instance %s not found", instanceID)
	}
	var ids []string
	gjson.GetBytes(raw, "SecurityGroups.#.GroupId").ForEach(func(_, v gjson.Result) bool {
		ids = append(ids, v.String())
		return true
	})
	if len(ids) == 0 {
		return nil, errors.WithMessagef(cliexec.ErrInvalidArgument,
			"instance %s has no security groups attached", instanceID)
	}
	return ids, nil
}

func buildDescribeSecurityGroupsInvocation(binary string, timeout time.Duration, groupIDs []string, region string) cliexec.Invocation {
	args := []string{"ec2", "describe-security-groups", "--group-ids"}
	args = append(args, groupIDs...)
	if region != "" {
		args = append(args, "--region", region)
	}
	args = append(args, "--output", "json")
	return cliexec.Invocation{Executable: binary, Args: args, Timeout: timeout}
}
