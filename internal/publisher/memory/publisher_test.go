package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	t.Parallel()

	pub := New()

	id, err := pub.Publish(context.Background(), "runs", map[string]any{"run_id": "r1"})
	require.NoError(t, err)
	assert.Equal(t, "memory-1", id)

	id, err = pub.Publish(context.Background(), "runs", "second")
	require.NoError(t, err)
	assert.Equal(t, "memory-2", id)

	messages := pub.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "runs", messages[0].Topic)
	assert.Equal(t, map[string]any{"run_id": "r1"}, messages[0].Payload)
	assert.Equal(t, "second", messages[1].Payload)
}
