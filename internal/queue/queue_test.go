package queue

import (
	"context"
	"testing"

	"github.com/emrgen/headline/internal/compress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	event := NewHeadlineEvent(HeadlineCreated, 7, []uint{2, 3}, nil)

	for _, c := range []compress.Compress{compress.NewNop(), compress.NewGZip(), compress.NewBrotli(), compress.NewLZ4()} {
		payload, err := Encode(c, event)
		require.NoError(t, err)

		got, err := Decode(c, payload)
		require.NoError(t, err)
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, HeadlineCreated, got.Type)
		assert.Equal(t, uint(7), got.HeadlineID)
		assert.Equal(t, []uint{2, 3}, got.ForwardRefIDs)
		assert.Equal(t, []uint{}, got.BackwardRefIDs)
		assert.True(t, event.OccurredAt.Equal(got.OccurredAt))
	}
}

func TestNew(t *testing.T) {
	q, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, &Nop{}, q)
	assert.NoError(t, q.PublishChange(context.TODO(), NewHeadlineEvent(HeadlineDeleted, 1, nil, nil)))
	assert.NoError(t, q.Close())

	_, err = New(Options{Driver: "rabbitmq"})
	assert.Error(t, err)

	_, err = New(Options{Driver: "redis", Compression: "zstd"})
	assert.Error(t, err)
}
