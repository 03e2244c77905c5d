// Package lacework wraps the FortiCNAPP (Lacework) CLI for host
// vulnerability queries. Each tool builds a deterministic `lacework
// vulnerability host ...` invocation, runs it with a bounded timeout, and
// normalizes the CLI's native output into the stable public schemas below.
// The native field names never leak past this package.
package lacework

import "encoding/json"

// CVE is one vulnerability record in the public CVE-list schema. Field names
// and types are stable regardless of the CLI version that produced them.
type CVE struct {
	CVEID     string  `json:"cve_id"`
	Severity  string  `json:"severity"`
	CVSSScore float64 `json:"cvss_score"`
	Package   string  `json:"package"`
	Version   string  `json:"version"`
	OS        string  `json:"os"`
	HostCount int     `json:"host_count"`
	Status    string  `json:"status"`
}

// CVEList is the public response for CVE queries.
type CVEList struct {
	TotalCVEs      int             `json:"total_cves"`
	FiltersApplied Filters         `json:"filters_applied"`
	CVEs           []CVE           `json:"cves"`
	Raw            json.RawMessage `json:"raw,omitempty"`
}

// Host is one affected machine in the public host-list schema.
type Host struct {
	MachineID  string `json:"machine_id"`
	Hostname   string `json:"hostname"`
	ExternalIP string `json:"external_ip"`
	InternalIP string `json:"internal_ip"`
	OS         string `json:"os"`
	Provider   string `json:"provider"`
	InstanceID string `json:"instance_id"`
	Status     string `json:"status"`
}

// HostList is the public response for hosts-by-CVE queries.
type HostList struct {
	CVEID              string          `json:"cve_id"`
	AffectedHostsCount int             `json:"affected_hosts_count"`
	Hosts              []Host          `json:"hosts"`
	Raw                json.RawMessage `json:"raw,omitempty"`
}

// Filters echoes the filters that were actually applied so the caller can
// tell "no matches" from "wrong filter". Zero-valued filters are omitted.
type Filters struct {
	SeverityFilter string   `json:"severity_filter,omitempty"`
	MinCVSSScore   *float64 `json:"min_cvss_score,omitempty"`
	StartTime      string   `json:"start_time,omitempty"`
	EndTime        string   `json:"end_time,omitempty"`
}
