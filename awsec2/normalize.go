package awsec2

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/secbridge/secquery/cliexec"
	"github.com/tidwall/gjson"
)

// SchemaKind enumerates the public response shapes this package can produce.
type SchemaKind string

const (
	SchemaInstanceSummary   SchemaKind = "instance_summary"
	SchemaSecurityGroupList SchemaKind = "security_group_list"
)

// NormalizeOptions carries the request echo fields and the raw opt-in.
type NormalizeOptions struct {
	InstanceID string
	IncludeRaw bool
}

// Normalize reshapes a parsed CLI payload into the public schema for kind.
// An unknown kind is a programming error and returns ErrUnsupportedSchema.
func Normalize(kind SchemaKind, payload *cliexec.Payload, opts NormalizeOptions) (any, error) {
	switch kind {
	case SchemaInstanceSummary:
		return normalizeInstanceSummary(payload, opts)
	case SchemaSecurityGroupList:
		return normalizeSecurityGroupList(payload, opts)
	default:
		return nil, errors.WithMessagef(cliexec.ErrUnsupportedSchema, "%s", kind)
	}
}

// firstInstance plucks Reservations[0].Instances[0] out of the
// describe-instances envelope. Missing means the id did not match anything.
func firstInstance(payload *cliexec.Payload) (json.RawMessage, bool) {
	if payload.IsEmpty() {
		return nil, false
	}
	inst := gjson.GetBytes(payload.Raw(), "Reservations.0.Instances.0")
	if !inst.Exists() {
		return nil, false
	}
	return json.RawMessage(inst.Raw), true
}

func normalizeInstanceSummary(payload *cliexec.Payload, opts NormalizeOptions) (*InstanceDetail, error) {
	raw, ok := firstInstance(payload)
	if !ok {
		return nil, errors.WithMessagef(cliexec.ErrInvalidArgument, "instance %s not found", opts.InstanceID)
	}

	var inst nativeInstance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, errors.WithMessagef(cliexec.ErrMalformedOutput, "unexpected instance shape: %s", err.Error())
	}

	groupIDs := make([]string, 0, len(inst.SecurityGroups))
	for _, sg := range inst.SecurityGroups {
		groupIDs = append(groupIDs, sg.GroupID)
	}

	// Platform is only set for Windows; everything else is Linux.
	platform := inst.Platform
	if platform == "" {
		platform = "linux"
	}

	res := &InstanceDetail{
		InstanceID: inst.InstanceID,
		Summary: &InstanceSummary{
			InstanceType:       inst.InstanceType,
			State:              inst.State.Name,
			AvailabilityZone:   inst.Placement.AvailabilityZone,
			Platform:           platform,
			PublicIP:           inst.PublicIPAddress,
			PrivateIP:          inst.PrivateIPAddress,
			PublicDNS:          inst.PublicDNSName,
			PrivateDNS:         inst.PrivateDNSName,
			VPCID:              inst.VPCID,
			SubnetID:           inst.SubnetID,
			SecurityGroupIDs:   groupIDs,
			IAMInstanceProfile: inst.IAMInstanceProfile.Arn,
			Tags:               tagMap(inst.Tags),
			LaunchTime:         inst.LaunchTime,
			Architecture:       inst.Architecture,
			VirtualizationType: inst.VirtualizationType,
		},
	}
	if opts.IncludeRaw {
		res.Raw = payload.Raw()
	}
	return res, nil
}

func normalizeSecurityGroupList(payload *cliexec.Payload, opts NormalizeOptions) (*SecurityGroupList, error) {
	env := struct {
		SecurityGroups []nativeSecurityGroup `json:"SecurityGroups"`
	}{}
	if err := payload.Decode(&env); err != nil {
		return nil, err
	}

	groups := make([]SecurityGroup, 0, len(env.SecurityGroups))
	for _, sg := range env.SecurityGroups {
		groups = append(groups, SecurityGroup{
			GroupID:       sg.GroupID,
			GroupName:     sg.GroupName,
			Description:   sg.Description,
			VPCID:         sg.VPCID,
			InboundRules:  normalizeRules(sg.IPPermissions, true),
			OutboundRules: normalizeRules(sg.IPPermissionsEgress, false),
			Tags:          tagMap(sg.Tags),
		})
	}

	res := &SecurityGroupList{
		SecurityGroupCount: len(groups),
		SecurityGroups:     groups,
		InstanceID:         opts.InstanceID,
	}
	if opts.IncludeRaw {
		res.Raw = payload.Raw()
	}
	return res, nil
}

func normalizeRules(perms []nativePermission, inbound bool) []Rule {
	rules := make([]Rule, 0, len(perms))
	for _, perm := range perms {
		// "-1" is the CLI's encoding for "all protocols".
		protocol := perm.IPProtocol
		if protocol == "" || protocol == "-1" {
			protocol = "all"
		}

		ranges := make([]string, 0, len(perm.IPRanges))
		description := ""
		for i, r := range perm.IPRanges {
			ranges = append(ranges, r.CidrIP)
			if i == 0 {
				description = r.Description
			}
		}
		v6ranges := make([]string, 0, len(perm.IPv6Ranges))
		for _, r := range perm.IPv6Ranges {
			v6ranges = append(v6ranges, r.CidrIPv6)
		}
		peers := make([]string, 0, len(perm.UserIDGroupPairs))
		for _, g := range perm.UserIDGroupPairs {
			peers = append(peers, g.GroupID)
		}

		rule := Rule{
			Protocol:    protocol,
			FromPort:    perm.FromPort,
			ToPort:      perm.ToPort,
			IPRanges:    ranges,
			IPv6Ranges:  v6ranges,
			Description: description,
		}
		if inbound {
			rule.SourceSecurityGroups = peers
		} else {
			rule.DestinationSecurityGroups = peers
		}
		rules = append(rules, rule)
	}
	return rules
}
