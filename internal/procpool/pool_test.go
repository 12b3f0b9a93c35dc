package procpool

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	_, err := New(0)
	require.Error(t, err)
	_, err = New(-3)
	require.Error(t, err)
}

func TestExec_CapturesStdoutAndExitCode(t *testing.T) {
	t.Parallel()

	pool, err := New(1)
	require.NoError(t, err)

	res, err := pool.Exec(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello", strings.TrimSpace(res.Stdout))
}

func TestExec_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	pool, err := New(1)
	require.NoError(t, err)

	res, err := pool.Exec(context.Background(), "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExec_SyntaxErrorIsAnError(t *testing.T) {
	t.Parallel()

	pool, err := New(1)
	require.NoError(t, err)

	_, err = pool.Exec(context.Background(), "if then fi ((")
	require.Error(t, err)
}

func TestExec_WorkerStateDoesNotLeakBetweenProbes(t *testing.T) {
	t.Parallel()

	pool, err := New(1)
	require.NoError(t, err)

	res, err := pool.Exec(context.Background(), "PROBE_VAR=leaked; echo first")
	require.NoError(t, err)
	assert.Equal(t, "first", strings.TrimSpace(res.Stdout))

	// The single worker is reused; output and variables must be fresh.
	res, err = pool.Exec(context.Background(), `echo "second:${PROBE_VAR-unset}"`)
	require.NoError(t, err)
	assert.Equal(t, "second:unset", strings.TrimSpace(res.Stdout))
}

func TestExec_QueuedCallHonorsCancellation(t *testing.T) {
	t.Parallel()

	pool, err := New(1)
	require.NoError(t, err)

	occupyCtx, occupyCancel := context.WithCancel(context.Background())
	defer occupyCancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Occupy the only worker until the test finishes.
		_, _ = pool.Exec(occupyCtx, "sleep 5")
	}()

	// Give the first probe time to acquire the worker.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = pool.Exec(ctx, "echo queued")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	occupyCancel()
	wg.Wait()
}

func TestExec_ExclusiveWorkerOwnershipQueues(t *testing.T) {
	t.Parallel()

	// With a single worker, two overlapping probes must serialize: the
	// second queues until the first releases the worker.
	pool, err := New(1)
	require.NoError(t, err)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, execErr := pool.Exec(context.Background(), "sleep 0.1")
			assert.NoError(t, execErr)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}
