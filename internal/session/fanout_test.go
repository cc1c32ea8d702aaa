package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"quorum/internal/perception"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go.opencensus.io (a transitive dependency of google.golang.org/genai)
		// starts a worker goroutine in package init that never exits.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

func TestFanOutPreservesInputOrder(t *testing.T) {
	ids := []string{"m1", "m2", "m3", "m4", "m5"}
	results, err := fanOut(context.Background(), ids, func(ctx context.Context, id string) (string, error) {
		if id == "m1" {
			// The slowest worker must not displace anyone.
			time.Sleep(40 * time.Millisecond)
		}
		return strings.ToUpper(id), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "M2", "M3", "M4", "M5"}, results)
}

func TestFanOutFailureCancelsSiblings(t *testing.T) {
	boom := errors.New("provider unreachable")
	sawCancel := make(chan struct{})

	_, err := fanOut(context.Background(), []string{"fast-fail", "slow"}, func(ctx context.Context, id string) (int, error) {
		if id == "fast-fail" {
			return 0, boom
		}
		select {
		case <-ctx.Done():
			close(sawCancel)
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
			return 1, nil
		}
	})
	require.ErrorIs(t, err, boom)

	select {
	case <-sawCancel:
	case <-time.After(time.Second):
		t.Fatal("sibling worker was not cancelled")
	}
}

func TestRunAbortsOnCancelledContext(t *testing.T) {
	cfg := threeMemberConfig(t)
	clients := map[string]perception.ModelClient{
		"m1": perception.NewScriptedClient(),
		"m2": perception.NewScriptedClient(),
		"m3": perception.NewScriptedClient(),
	}
	o := newTestOrchestrator(t, cfg, clients)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, "Topic", false)
	require.ErrorIs(t, err, context.Canceled)
}
