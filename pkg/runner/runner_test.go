//go:build unix

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	r := New()
	result, err := r.Run(context.Background(), []string{"sh", "-c", "echo hello"}, 10*time.Second)
	require.NoError(t, err)
	require.NotNil(t, result.Code)
	assert.Equal(t, 0, *result.Code)
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestRun_NonzeroExit(t *testing.T) {
	r := New()
	result, err := r.Run(context.Background(), []string{"sh", "-c", "echo oops >&2; exit 3"}, 10*time.Second)
	require.NoError(t, err)
	require.NotNil(t, result.Code)
	assert.Equal(t, 3, *result.Code)
	assert.Equal(t, "oops\n", result.Stderr)
}

func TestRun_Timeout(t *testing.T) {
	r := New()
	start := time.Now()
	result, err := r.Run(context.Background(), []string{"sleep", "30"}, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "timeout should terminate the process")
	assert.Nil(t, result.Code, "killed process has no exit code")
}

func TestRun_SpawnFailure(t *testing.T) {
	r := New()
	result, err := r.Run(context.Background(), []string{"definitely-not-a-real-binary-xyz"}, time.Second)
	require.NoError(t, err)
	assert.Nil(t, result.Code)
}

func TestRun_EmptyCommand(t *testing.T) {
	r := New()
	_, err := r.Run(context.Background(), nil, time.Second)
	assert.Error(t, err)
}
