package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerStartsIdle(t *testing.T) {
	c := NewController[[]string]()
	assert.Equal(t, PhaseIdle, c.State().Phase)
}

func TestControllerSuccess(t *testing.T) {
	c := NewController[[]string]()
	done := c.Load(context.Background(), "k", func(ctx context.Context) ([]string, error) {
		return []string{"x"}, nil
	})
	<-done

	st := c.State()
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, []string{"x"}, st.Data)
	assert.Equal(t, "k", c.Key())
}

func TestControllerError(t *testing.T) {
	c := NewController[[]string]()
	done := c.Load(context.Background(), "k", func(ctx context.Context) ([]string, error) {
		return nil, errors.New("boom")
	})
	<-done

	st := c.State()
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, "boom", st.Message)
}

func TestControllerIsLoadingWhileInFlight(t *testing.T) {
	c := NewController[[]string]()
	release := make(chan struct{})
	done := c.Load(context.Background(), "k", func(ctx context.Context) ([]string, error) {
		<-release
		return nil, nil
	})

	assert.Equal(t, PhaseLoading, c.State().Phase)
	close(release)
	<-done
}

func TestSupersededResultIsDiscarded(t *testing.T) {
	c := NewController[string]()
	releaseA := make(chan struct{})

	doneA := c.Load(context.Background(), "A", func(ctx context.Context) (string, error) {
		<-releaseA
		return "stale A", nil
	})
	doneB := c.Load(context.Background(), "B", func(ctx context.Context) (string, error) {
		return "fresh B", nil
	})
	<-doneB

	// A's response arrives after B already settled; it must not win.
	close(releaseA)
	<-doneA

	st := c.State()
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, "fresh B", st.Data)
	assert.Equal(t, "B", c.Key())
}

func TestSupersededErrorIsDiscardedToo(t *testing.T) {
	c := NewController[string]()
	releaseA := make(chan struct{})

	doneA := c.Load(context.Background(), "A", func(ctx context.Context) (string, error) {
		<-releaseA
		return "", errors.New("stale failure")
	})
	doneB := c.Load(context.Background(), "B", func(ctx context.Context) (string, error) {
		return "fresh B", nil
	})
	<-doneB
	close(releaseA)
	<-doneA

	st := c.State()
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Empty(t, st.Message)
}

func TestSupersedeCancelsPriorContext(t *testing.T) {
	c := NewController[string]()
	cancelled := make(chan struct{})

	doneA := c.Load(context.Background(), "A", func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			close(cancelled)
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "", errors.New("was not cancelled")
		}
	})
	doneB := c.Load(context.Background(), "B", func(ctx context.Context) (string, error) {
		return "B", nil
	})

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("prior request context was never cancelled")
	}
	<-doneA
	<-doneB
	assert.Equal(t, "B", c.State().Data)
}

func TestCancelledRequestNeverTransitionsState(t *testing.T) {
	c := NewController[string]()
	done := c.Load(context.Background(), "k", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		// Even a request that "completes" after cancellation is discarded.
		return "zombie", nil
	})

	c.Close()
	<-done

	assert.Equal(t, PhaseLoading, c.State().Phase, "state frozen at the moment of teardown")
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewController[string]()
	require.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
}
