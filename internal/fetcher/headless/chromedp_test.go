package headless

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopFetchPageFails(t *testing.T) {
	t.Parallel()

	noop := NewNoop()
	_, err := noop.FetchPage(context.Background(), "http://x", 1)
	require.Error(t, err)
}

func TestNew_RejectsNegativeParallel(t *testing.T) {
	t.Parallel()

	_, err := New(Config{MaxParallel: -1})
	require.Error(t, err)
}

func TestAcquireRelease(t *testing.T) {
	t.Parallel()

	f := &Fetcher{limiter: make(chan struct{}, 1)}
	require.NoError(t, f.acquire(context.Background()))

	// The single slot is taken; a second acquire must respect the
	// context deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := f.acquire(ctx)
	require.Error(t, err)

	f.release()
	require.NoError(t, f.acquire(context.Background()))
}

func TestAcquire_Unbounded(t *testing.T) {
	t.Parallel()

	f := &Fetcher{}
	for i := 0; i < 10; i++ {
		require.NoError(t, f.acquire(context.Background()))
	}
	f.release()
}

func TestResponseMeta(t *testing.T) {
	t.Parallel()

	meta := &responseMeta{}
	assert.Equal(t, 0, meta.statusCode())

	// Non-document responses are ignored.
	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeXHR,
		Response: &network.Response{Status: 500},
	})
	assert.Equal(t, 0, meta.statusCode())

	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 404},
	})
	assert.Equal(t, 404, meta.statusCode())
}
