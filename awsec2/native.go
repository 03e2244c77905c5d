package awsec2

// Native shapes of the AWS CLI's JSON output. These PascalCase names must
// not appear anywhere outside this package.

type nativeTag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

func tagMap(tags []nativeTag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		m[tag.Key] = tag.Value
	}
	return m
}

type nativeGroupRef struct {
	GroupID   string `json:"GroupId"`
	GroupName string `json:"GroupName"`
}

type nativeInstance struct {
	InstanceID   string `json:"InstanceId"`
	InstanceType string `json:"InstanceType"`
	State        struct {
		Name string `json:"Name"`
	} `json:"State"`
	Placement struct {
		AvailabilityZone string `json:"AvailabilityZone"`
	} `json:"Placement"`
	Platform         string           `json:"Platform"`
	PublicIPAddress  string           `json:"PublicIpAddress"`
	PrivateIPAddress string           `json:"PrivateIpAddress"`
	PublicDNSName    string           `json:"PublicDnsName"`
	PrivateDNSName   string           `json:"PrivateDnsName"`
	VPCID            string           `json:"VpcId"`
	SubnetID         string           `json:"SubnetId"`
	SecurityGroups   []nativeGroupRef `json:"SecurityGroups"`

	IAMInstanceProfile struct {
		Arn string `json:"Arn"`
	} `json:"IamInstanceProfile"`
	Tags               []nativeTag `json:"Tags"`
	LaunchTime         string      `json:"LaunchTime"`
	Architecture       string      `json:"Architecture"`
	VirtualizationType string      `json:"VirtualizationType"`
}

type nativeIPRange struct {
	CidrIP      string `json:"CidrIp"`
	Description string `json:"Description"`
}

type nativeIPv6Range struct {
	CidrIPv6 string `json:"CidrIpv6"`
}

type nativePermission struct {
	IPProtocol string            `json:"IpProtocol"`
	FromPort   *int              `json:"FromPort"`
	ToPort     *int              `json:"ToPort"`
	IPRanges   []nativeIPRange   `json:"IpRanges"`
	IPv6Ranges []nativeIPv6Range `json:"Ipv6Ranges"`

	UserIDGroupPairs []struct {
		GroupID string `json:"GroupId"`
	} `json:"UserIdGroupPairs"`
}

type nativeSecurityGroup struct {
	GroupID             string             `json:"GroupId"`
	GroupName           string             `json:"GroupName"`
	Description         string             `json:"Description"`
	VPCID               string             `json:"VpcId"`
	IPPermissions       []nativePermission `json:"IpPermissions"`
	IPPermissionsEgress []nativePermission `json:"IpPermissionsEgress"`
	Tags                []nativeTag        `json:"Tags"`
}
