package graph

import (
	"context"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/headline/internal/model"
	"github.com/emrgen/headline/internal/store"
	"github.com/emrgen/headline/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, n int) (store.Store, []*model.Headline) {
	t.Helper()

	s := store.NewGormStore(tester.TestDB(t))
	headlines := make([]*model.Headline, 0, n)
	for i := 0; i < n; i++ {
		h := &model.Headline{Title: "title", Category: tester.StringPtr(model.CategoryBookPaper)}
		require.NoError(t, s.CreateHeadline(context.TODO(), h))
		headlines = append(headlines, h)
	}

	return s, headlines
}

func ids(headlines []*model.Headline) []uint {
	out := make([]uint, 0, len(headlines))
	for _, h := range headlines {
		out = append(out, h.ID)
	}
	return out
}

func TestGraph_SyncForward(t *testing.T) {
	s, hs := setup(t, 4)
	g := New(s)
	a, b, c, d := hs[0], hs[1], hs[2], hs[3]

	res, err := g.SyncForward(context.TODO(), a.ID, mapset.NewSet(c.ID, b.ID))
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, res.Attached)
	assert.Empty(t, res.Detached)

	forward, err := g.ForwardRefs(context.TODO(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, ids(forward))

	// same row seen from the other end
	backward, err := g.BackwardRefs(context.TODO(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids(backward))

	res, err = g.SyncForward(context.TODO(), a.ID, mapset.NewSet(c.ID, d.ID))
	require.NoError(t, err)
	assert.Equal(t, []uint{d.ID}, res.Attached)
	assert.Equal(t, []uint{b.ID}, res.Detached)

	forward, err = g.ForwardRefs(context.TODO(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID, d.ID}, ids(forward))
}

func TestGraph_SyncForwardIdempotent(t *testing.T) {
	s, hs := setup(t, 3)
	g := New(s)
	a, b, c := hs[0], hs[1], hs[2]

	_, err := g.SyncForward(context.TODO(), a.ID, mapset.NewSet(b.ID, c.ID))
	require.NoError(t, err)
	before, err := s.ListRefs(context.TODO(), []uint{a.ID})
	require.NoError(t, err)

	res, err := g.SyncForward(context.TODO(), a.ID, mapset.NewSet(b.ID, c.ID))
	require.NoError(t, err)
	assert.False(t, res.Changed())

	after, err := s.ListRefs(context.TODO(), []uint{a.ID})
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].OriginID, after[i].OriginID)
		assert.Equal(t, before[i].EndID, after[i].EndID)
		assert.True(t, before[i].UpdatedAt.Equal(after[i].UpdatedAt))
	}
}

func TestGraph_SyncBackward(t *testing.T) {
	s, hs := setup(t, 3)
	g := New(s)
	a, b, c := hs[0], hs[1], hs[2]

	_, err := g.SyncBackward(context.TODO(), a.ID, mapset.NewSet(b.ID, c.ID))
	require.NoError(t, err)

	forward, err := g.ForwardRefs(context.TODO(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids(forward))

	res, err := g.SyncBackward(context.TODO(), a.ID, mapset.NewSet[uint]())
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, res.Detached)

	backward, err := g.BackwardRefs(context.TODO(), a.ID)
	require.NoError(t, err)
	assert.Empty(t, backward)
}

func TestGraph_Attach(t *testing.T) {
	s, hs := setup(t, 4)
	g := New(s)
	a, b, c, d := hs[0], hs[1], hs[2], hs[3]

	_, err := g.SyncForward(context.TODO(), a.ID, mapset.NewSet(b.ID, c.ID))
	require.NoError(t, err)
	_, err = g.SyncForward(context.TODO(), d.ID, mapset.NewSet(a.ID, b.ID))
	require.NoError(t, err)
	require.NoError(t, s.DeleteHeadline(context.TODO(), c.ID))

	list, err := s.ListHeadlines(context.TODO(), nil)
	require.NoError(t, err)
	require.NoError(t, g.Attach(context.TODO(), list...))
	require.Len(t, list, 3)

	// deleted c is left out of a's forward refs
	assert.Equal(t, []uint{b.ID}, ids(list[0].ForwardRefs))
	assert.Equal(t, []uint{d.ID}, ids(list[0].BackwardRefs))
	assert.Empty(t, list[1].ForwardRefs)
	assert.Equal(t, []uint{a.ID, d.ID}, ids(list[1].BackwardRefs))
	assert.Equal(t, []uint{a.ID, b.ID}, ids(list[2].ForwardRefs))
	assert.Empty(t, list[2].BackwardRefs)
}

func TestGraph_DetachAll(t *testing.T) {
	s, hs := setup(t, 3)
	g := New(s)
	a, b, c := hs[0], hs[1], hs[2]

	_, err := g.SyncForward(context.TODO(), a.ID, mapset.NewSet(b.ID))
	require.NoError(t, err)
	_, err = g.SyncBackward(context.TODO(), a.ID, mapset.NewSet(c.ID))
	require.NoError(t, err)
	_, err = g.SyncForward(context.TODO(), b.ID, mapset.NewSet(c.ID))
	require.NoError(t, err)

	require.NoError(t, g.DetachAll(context.TODO(), a.ID))

	refs, err := s.ListRefs(context.TODO(), []uint{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, b.ID, refs[0].OriginID)
	assert.Equal(t, c.ID, refs[0].EndID)
}
