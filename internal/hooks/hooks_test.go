package hooks

import (
	"bytes"
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX true/false")
	}

	tests := []struct {
		name      string
		hook      HookConfig
		wantErr   bool
		errSubstr string
	}{
		{
			name: "command succeeds",
			hook: HookConfig{Command: "true"},
		},
		{
			name:      "empty command returns error",
			hook:      HookConfig{Command: ""},
			wantErr:   true,
			errSubstr: "empty command",
		},
		{
			name:      "whitespace-only command returns error",
			hook:      HookConfig{Command: "   "},
			wantErr:   true,
			errSubstr: "empty command",
		},
		{
			name:      "non-zero exit with error_on_fail returns error",
			hook:      HookConfig{Command: "false", ErrorOnFail: true},
			wantErr:   true,
			errSubstr: "exited with code 1",
		},
		{
			name: "non-zero exit without error_on_fail continues",
			hook: HookConfig{Command: "false"},
		},
		{
			name: "custom acceptable exit codes",
			hook: HookConfig{Command: "false", ExitCodes: []int{1}, ErrorOnFail: true},
		},
		{
			name:      "zero exit not in acceptable codes",
			hook:      HookConfig{Command: "true", ExitCodes: []int{2}, ErrorOnFail: true},
			wantErr:   true,
			errSubstr: "exited with code 0",
		},
		{
			name:      "missing binary with error_on_fail",
			hook:      HookConfig{Command: "faircheck-no-such-binary", ErrorOnFail: true},
			wantErr:   true,
			errSubstr: "before_run[0]",
		},
		{
			name: "missing binary without error_on_fail",
			hook: HookConfig{Command: "faircheck-no-such-binary"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &Runner{}
			err := r.runHook(context.Background(), BeforeRun, 0, tc.hook)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSubstr)
		})
	}
}

func TestRunHook_OutputAndEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX env")
	}

	var out bytes.Buffer
	r := &Runner{Output: &out, Env: []string{"FAIRCHECK_EXPORT=results.csv"}}

	require.NoError(t, r.Execute(context.Background(), AfterRun, []HookConfig{{Command: "env"}}))
	assert.Contains(t, out.String(), "[hook:after_run] ")
	assert.Contains(t, out.String(), "FAIRCHECK_EXPORT=results.csv")
}

func TestExecute_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{}
	err := r.Execute(ctx, BeforeRun, []HookConfig{{Command: "echo hello"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestExecute_ContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	r := &Runner{}
	err := r.Execute(ctx, BeforeRun, []HookConfig{{Command: "echo hello"}})
	assert.Error(t, err)
}

func TestIsAcceptableExit(t *testing.T) {
	assert.True(t, isAcceptableExit(0, nil))
	assert.False(t, isAcceptableExit(1, nil))
	assert.True(t, isAcceptableExit(3, []int{1, 3}))
	assert.False(t, isAcceptableExit(0, []int{1, 3}))
}
