package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_ShutsDownInReverseOrder(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)

	var order []string
	for _, name := range []string{"metrics", "http", "sandbox"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown())
	assert.Equal(t, []string{"sandbox", "http", "metrics"}, order)
}

func TestManager_JoinsErrorsAndContinues(t *testing.T) {
	m := NewManager(nil, time.Second)

	boom := errors.New("boom")
	called := false
	m.Register("first", func(context.Context) error {
		called = true
		return nil
	})
	m.Register("second", func(context.Context) error { return boom })

	err := m.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "second")
	assert.True(t, called)
}

func TestManager_ContextCarriesTimeout(t *testing.T) {
	m := NewManager(nil, 50*time.Millisecond)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManager_WaitForShutdownOnContextCancel(t *testing.T) {
	m := NewManager(nil, time.Second)
	stopped := make(chan struct{})
	m.Register("server", func(context.Context) error {
		close(stopped)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, m.WaitForShutdown(ctx))
	select {
	case <-stopped:
	default:
		t.Fatal("component was not shut down")
	}
}
