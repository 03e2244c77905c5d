package lacework_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/secbridge/secquery/cliexec"
	"github.com/secbridge/secquery/config"
	"github.com/secbridge/secquery/lacework"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testService = config.Service{Binary: "lacework", TimeoutSec: 60}

// fakeRunner records invocations and plays back canned results, so no
// subprocess is ever spawned in these tests.
type fakeRunner struct {
	mu          sync.Mutex
	invocations []cliexec.Invocation
	results     []*cliexec.Result
	errs        []error
}

func (f *fakeRunner) run(_ context.Context, inv cliexec.Invocation) (*cliexec.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.invocations)
	f.invocations = append(f.invocations, inv)
	var res *cliexec.Result
	var err error
	if i < len(f.results) {
		res = f.results[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return res, err
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invocations)
}

func stdout(s string) *cliexec.Result {
	return &cliexec.Result{Stdout: []byte(s)}
}

const cveFixture = `{
  "data": [
    {"cveId":"CVE-2024-0001","severity":"Critical","cvssScore":9.8,"packageName":"openssl","packageVersion":"1.1.1k","osName":"Ubuntu","hostCount":12,"status":"Active"},
    {"cveId":"CVE-2024-0002","severity":"High","cvssScore":"7.0","packageName":"curl","packageVersion":"7.81.0","osName":"Ubuntu","hostCount":3,"status":"Active"}
  ]
}`

func TestListCVEs_Normalization(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{results: []*cliexec.Result{stdout(cveFixture)}}
	tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

	out, err := tool.Run(ctx, &lacework.ListCVEsRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, out.TotalCVEs)
	require.Len(t, out.CVEs, 2)
	assert.Equal(t, "CVE-2024-0001", out.CVEs[0].CVEID)
	assert.Equal(t, 9.8, out.CVEs[0].CVSSScore)
	assert.Equal(t, "openssl", out.CVEs[0].Package)
	assert.Equal(t, "1.1.1k", out.CVEs[0].Version)
	assert.Equal(t, 12, out.CVEs[0].HostCount)
	// Numeric strings from older collectors are coerced.
	assert.Equal(t, 7.0, out.CVEs[1].CVSSScore)

	// Builder defaults are echoed as applied filters.
	assert.Equal(t, "-24h", out.FiltersApplied.StartTime)
	assert.Equal(t, "now", out.FiltersApplied.EndTime)

	// The raw payload is never attached unless requested.
	assert.Nil(t, out.Raw)

	// Public field names are stable and snake_case; native names never leak.
	bs, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"cve_id"`)
	assert.Contains(t, string(bs), `"cvss_score"`)
	assert.Contains(t, string(bs), `"total_cves"`)
	assert.NotContains(t, string(bs), `cveId`)
	assert.NotContains(t, string(bs), `cvssScore`)
	assert.NotContains(t, string(bs), `"raw"`)
}

func TestListCVEs_BuilderDeterministic(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{results: []*cliexec.Result{stdout(cveFixture), stdout(cveFixture)}}
	tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

	req := &lacework.ListCVEsRequest{StartTime: "-7d", EndTime: "now"}
	_, err := tool.Run(ctx, req)
	require.NoError(t, err)
	_, err = tool.Run(ctx, req)
	require.NoError(t, err)

	require.Equal(t, 2, runner.count())
	assert.Empty(t, cmp.Diff(runner.invocations[0], runner.invocations[1]))
	assert.Equal(t, "lacework", runner.invocations[0].Executable)
	assert.Equal(t,
		[]string{"vulnerability", "host", "list-cves", "--start", "-7d", "--end", "now", "--json"},
		runner.invocations[0].Args)
}

func TestListCVEs_SeverityFilter(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{results: []*cliexec.Result{stdout(cveFixture)}}
	tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

	out, err := tool.Run(ctx, &lacework.ListCVEsRequest{SeverityFilter: "High"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalCVEs)
	assert.Equal(t, "CVE-2024-0002", out.CVEs[0].CVEID)
	assert.Equal(t, "High", out.FiltersApplied.SeverityFilter)
}

func TestListCVEs_InvalidArguments(t *testing.T) {
	ctx := context.Background()

	tcases := []struct {
		name string
		req  *lacework.ListCVEsRequest
	}{
		{"score above domain", &lacework.ListCVEsRequest{MinCVSSScore: ptr(11.0)}},
		{"score below domain", &lacework.ListCVEsRequest{MinCVSSScore: ptr(-0.1)}},
		{"unknown severity", &lacework.ListCVEsRequest{SeverityFilter: "Catastrophic"}},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{}
			tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

			_, err := tool.Run(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, cliexec.ErrInvalidArgument))
			assert.Equal(t, 0, runner.count(), "no subprocess may be spawned for invalid arguments")
		})
	}
}

func TestListCVEs_EmptyStdout(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{results: []*cliexec.Result{stdout("")}}
	tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

	out, err := tool.Run(ctx, &lacework.ListCVEsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.TotalCVEs)
	assert.Empty(t, out.CVEs)
}

func TestListCVEs_ExecutionErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("command failed", func(t *testing.T) {
		runner := &fakeRunner{
			results: []*cliexec.Result{{ExitCode: 1, Stderr: []byte("unauthorized")}},
			errs:    []error{errors.WithMessage(cliexec.ErrCommandFailed, "lacework exited with code 1: unauthorized")},
		}
		tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

		_, err := tool.Run(ctx, &lacework.ListCVEsRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, cliexec.ErrCommandFailed))
		assert.Contains(t, err.Error(), "unauthorized")
	})

	t.Run("timeout", func(t *testing.T) {
		runner := &fakeRunner{
			results: []*cliexec.Result{{TimedOut: true, ExitCode: -1}},
			errs:    []error{errors.WithMessage(cliexec.ErrCommandTimeout, "lacework after 60s")},
		}
		tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

		_, err := tool.Run(ctx, &lacework.ListCVEsRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, cliexec.ErrCommandTimeout))
		assert.False(t, errors.Is(err, cliexec.ErrCommandFailed))
	})

	t.Run("malformed output", func(t *testing.T) {
		runner := &fakeRunner{results: []*cliexec.Result{stdout("Segmentation fault")}}
		tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

		_, err := tool.Run(ctx, &lacework.ListCVEsRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, cliexec.ErrMalformedOutput))
	})
}

func TestListCVEs_IncludeRaw(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{results: []*cliexec.Result{stdout(cveFixture)}}
	tool := lacework.NewListCVEsTool(testService).WithRunner(runner.run)

	out, err := tool.Run(ctx, &lacework.ListCVEsRequest{IncludeRaw: true})
	require.NoError(t, err)
	require.NotNil(t, out.Raw)
	assert.JSONEq(t, cveFixture, string(out.Raw))
}

func TestGetCriticalCVEs_ThresholdScenario(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{results: []*cliexec.Result{stdout(cveFixture)}}
	tool := lacework.NewGetCriticalCVEsTool(testService).WithRunner(runner.run)

	out, err := tool.Run(ctx, &lacework.GetCriticalCVEsRequest{MinCVSSScore: ptr(9.0)})
	require.NoError(t, err)

	// Fixture has scores 9.8 and 7.0; only the 9.8 entry passes.
	assert.Equal(t, 1, out.TotalCVEs)
	require.Len(t, out.CVEs, 1)
	assert.Equal(t, "CVE-2024-0001", out.CVEs[0].CVEID)
	require.NotNil(t, out.FiltersApplied.MinCVSSScore)
	assert.Equal(t, 9.0, *out.FiltersApplied.MinCVSSScore)
}

func TestGetCriticalCVEs_DefaultThresholdAndSort(t *testing.T) {
	ctx := context.Background()
	fixture := `{"data":[
		{"cveId":"CVE-2024-0010","severity":"Critical","cvssScore":9.1},
		{"cveId":"CVE-2024-0011","severity":"Critical","cvssScore":10.0},
		{"cveId":"CVE-2024-0012","severity":"Critical","cvssScore":9.6},
		{"cveId":"CVE-2024-0013","severity":"High","cvssScore":8.9}
	]}`
	runner := &fakeRunner{results: []*cliexec.Result{stdout(fixture)}}
	tool := lacework.NewGetCriticalCVEsTool(testService).WithRunner(runner.run)

	out, err := tool.Run(ctx, &lacework.GetCriticalCVEsRequest{})
	require.NoError(t, err)

	require.Equal(t, 3, out.TotalCVEs)
	assert.Equal(t, "CVE-2024-0011", out.CVEs[0].CVEID)
	assert.Equal(t, "CVE-2024-0012", out.CVEs[1].CVEID)
	assert.Equal(t, "CVE-2024-0010", out.CVEs[2].CVEID)

	require.Equal(t, 1, runner.count())
	assert.Equal(t,
		[]string{"vulnerability", "host", "list-cves", "--start", "-24h", "--json"},
		runner.invocations[0].Args)
}

func TestTool_CallRoundTrip(t *testing.T) {
	ctx := context.Background()
	runner := &fakeRunner{results: []*cliexec.Result{stdout(cveFixture)}}
	tool := lacework.NewGetCriticalCVEsTool(testService).WithRunner(runner.run)

	out, err := tool.Call(ctx, `{"min_cvss_score": 9.0}`)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, float64(1), got["total_cves"])

	_, err = tool.Call(ctx, `{"min_cvss_score": 11.0}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cliexec.ErrInvalidArgument))
}

func ptr(f float64) *float64 { return &f }
