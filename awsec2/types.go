// Package awsec2 wraps the AWS CLI for EC2 instance metadata and security
// group queries. Commands always request JSON output and rely on the CLI's
// own credential chain; this layer never sees or passes credentials.
package awsec2

import "encoding/json"

// InstanceSummary is the public instance-summary schema: the documented
// subset of describe-instances output with stable snake_case names.
type InstanceSummary struct {
	InstanceType       string            `json:"instance_type"`
	State              string            `json:"state"`
	AvailabilityZone   string            `json:"availability_zone"`
	Platform           string            `json:"platform"`
	PublicIP           string            `json:"public_ip"`
	PrivateIP          string            `json:"private_ip"`
	PublicDNS          string            `json:"public_dns"`
	PrivateDNS         string            `json:"private_dns"`
	VPCID              string            `json:"vpc_id"`
	SubnetID           string            `json:"subnet_id"`
	SecurityGroupIDs   []string          `json:"security_group_ids"`
	IAMInstanceProfile string            `json:"iam_instance_profile"`
	Tags               map[string]string `json:"tags"`
	LaunchTime         string            `json:"launch_time"`
	Architecture       string            `json:"architecture"`
	VirtualizationType string            `json:"virtualization_type"`
}

// InstanceDetail is the public response for describe_instance.
type InstanceDetail struct {
	InstanceID string           `json:"instance_id"`
	Summary    *InstanceSummary `json:"summary"`
	Raw        json.RawMessage  `json:"raw,omitempty"`
}

// Rule is one inbound or outbound security group rule.
type Rule struct {
	Protocol                  string   `json:"protocol"`
	FromPort                  *int     `json:"from_port"`
	ToPort                    *int     `json:"to_port"`
	IPRanges                  []string `json:"ip_ranges"`
	IPv6Ranges                []string `json:"ipv6_ranges"`
	SourceSecurityGroups      []string `json:"source_security_groups,omitempty"`
	DestinationSecurityGroups []string `json:"destination_security_groups,omitempty"`
	Description               string   `json:"description"`
}

// SecurityGroup is one record in the public security-group-list schema.
type SecurityGroup struct {
	GroupID       string            `json:"group_id"`
	GroupName     string            `json:"group_name"`
	Description   string            `json:"description"`
	VPCID         string            `json:"vpc_id"`
	InboundRules  []Rule            `json:"inbound_rules"`
	OutboundRules []Rule            `json:"outbound_rules"`
	Tags          map[string]string `json:"tags"`
}

// SecurityGroupList is the public response for get_security_groups.
// InstanceID is set when the groups were resolved from an instance.
type SecurityGroupList struct {
	SecurityGroupCount int             `json:"security_group_count"`
	SecurityGroups     []SecurityGroup `json:"security_groups"`
	InstanceID         string          `json:"instance_id,omitempty"`
	Raw                json.RawMessage `json:"raw,omitempty"`
}
