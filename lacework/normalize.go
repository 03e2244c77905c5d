package lacework

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/secbridge/secquery/cliexec"
)

// SchemaKind enumerates the public response shapes this package can produce.
type SchemaKind string

const (
	SchemaCVEList  SchemaKind = "cve_list"
	SchemaHostList SchemaKind = "host_list"
)

// NormalizeOptions carries the request context a normalization routine needs:
// the client-side post-filters to apply, response echo fields, and whether
// the raw payload was explicitly requested.
type NormalizeOptions struct {
	Filters     Filters
	CVEID       string
	SortByScore bool
	IncludeRaw  bool
}

// Normalize reshapes a parsed CLI payload into the public schema for kind.
// It is the only place that knows the CLI's native field names. An unknown
// kind is a programming error and returns ErrUnsupportedSchema.
func Normalize(kind SchemaKind, payload *cliexec.Payload, opts NormalizeOptions) (any, error) {
	switch kind {
	case SchemaCVEList:
		return normalizeCVEList(payload, opts)
	case SchemaHostList:
		return normalizeHostList(payload, opts)
	default:
		return nil, errors.WithMessagef(cliexec.ErrUnsupportedSchema, "%s", kind)
	}
}

// normalizeCVEList renames native fields to the public ones and applies the
// severity and minimum-score post-filters. The CLI has no flags for either,
// filtering after retrieval keeps the command builder simple.
func normalizeCVEList(payload *cliexec.Payload, opts NormalizeOptions) (*CVEList, error) {
	var rows []nativeCVE
	if err := decodeRows(payload, &rows); err != nil {
		return nil, err
	}

	cves := make([]CVE, 0, len(rows))
	for _, row := range rows {
		if opts.Filters.SeverityFilter != "" &&
			!strings.EqualFold(row.Severity, opts.Filters.SeverityFilter) {
			continue
		}
		if opts.Filters.MinCVSSScore != nil && float64(row.CVSSScore) < *opts.Filters.MinCVSSScore {
			continue
		}
		cves = append(cves, CVE{
			CVEID:     row.CVEID,
			Severity:  row.Severity,
			CVSSScore: float64(row.CVSSScore),
			Package:   row.PackageName,
			Version:   row.PackageVersion,
			OS:        row.OSName,
			HostCount: int(row.HostCount),
			Status:    row.Status,
		})
	}

	if opts.SortByScore {
		sort.SliceStable(cves, func(i, j int) bool {
			return cves[i].CVSSScore > cves[j].CVSSScore
		})
	}

	res := &CVEList{
		TotalCVEs:      len(cves),
		FiltersApplied: opts.Filters,
		CVEs:           cves,
	}
	if opts.IncludeRaw {
		res.Raw = payload.Raw()
	}
	return res, nil
}

func normalizeHostList(payload *cliexec.Payload, opts NormalizeOptions) (*HostList, error) {
	var rows []nativeHost
	if err := decodeRows(payload, &rows); err != nil {
		return nil, err
	}

	hosts := make([]Host, 0, len(rows))
	for _, row := range rows {
		hosts = append(hosts, Host{
			MachineID:  string(row.MachineID),
			Hostname:   row.Hostname,
			ExternalIP: row.ExternalIP,
			InternalIP: row.InternalIP,
			OS:         row.OS,
			Provider:   row.Provider,
			InstanceID: row.InstanceID,
			Status:     row.Status,
		})
	}

	res := &HostList{
		CVEID:              opts.CVEID,
		AffectedHostsCount: len(hosts),
		Hosts:              hosts,
	}
	if opts.IncludeRaw {
		res.Raw = payload.Raw()
	}
	return res, nil
}
