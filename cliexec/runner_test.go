package cliexec_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/secbridge/secquery/cliexec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	ctx := context.Background()

	res, err := cliexec.Run(ctx, cliexec.Invocation{
		Executable: "sh",
		Args:       []string{"-c", `echo '{"data":[]}'`},
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.JSONEq(t, `{"data":[]}`, string(res.Stdout))
}

func TestRun_NonzeroExit(t *testing.T) {
	ctx := context.Background()

	res, err := cliexec.Run(ctx, cliexec.Invocation{
		Executable: "sh",
		Args:       []string{"-c", "echo 'access denied' >&2; exit 3"},
		Timeout:    5 * time.Second,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cliexec.ErrCommandFailed))
	assert.False(t, errors.Is(err, cliexec.ErrCommandTimeout))
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.TimedOut)
}

func TestRun_Timeout(t *testing.T) {
	ctx := context.Background()

	started := time.Now()
	res, err := cliexec.Run(ctx, cliexec.Invocation{
		Executable: "sleep",
		Args:       []string{"5"},
		Timeout:    200 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cliexec.ErrCommandTimeout))
	assert.True(t, res.TimedOut)
	assert.Less(t, time.Since(started), 3*time.Second, "the process must be terminated at the bound")
}

func TestRun_BinaryNotFound(t *testing.T) {
	ctx := context.Background()

	_, err := cliexec.Run(ctx, cliexec.Invocation{
		Executable: "no-such-binary-on-path",
		Timeout:    time.Second,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cliexec.ErrCommandFailed))
}

func TestRun_Concurrent(t *testing.T) {
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := cliexec.Run(ctx, cliexec.Invocation{
				Executable: "sh",
				Args:       []string{"-c", `echo '[1,2,3]'`},
				Timeout:    5 * time.Second,
			})
			assert.NoError(t, err)
			assert.JSONEq(t, `[1,2,3]`, string(res.Stdout))
		}()
	}
	wg.Wait()
}

func TestInvocation_String(t *testing.T) {
	inv := cliexec.Invocation{Executable: "aws", Args: []string{"ec2", "describe-instances", "--output", "json"}}
	assert.Equal(t, "aws ec2 describe-instances --output json", inv.String())
}
