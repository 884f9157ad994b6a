package store

import (
	"context"
	"errors"
	"testing"

	"github.com/emrgen/headline/internal/model"
	"github.com/emrgen/headline/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadline(t *testing.T, s Store, title, category string) *model.Headline {
	t.Helper()

	h := &model.Headline{Title: title, Category: tester.StringPtr(category)}
	require.NoError(t, s.CreateHeadline(context.TODO(), h))
	require.NotZero(t, h.ID)
	return h
}

func TestGormStore_ListHeadlines(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))

	h1 := newHeadline(t, s, "title-1", model.CategoryBookDigital)
	h2 := newHeadline(t, s, "title-2", model.CategorySoundCD)
	h3 := newHeadline(t, s, "title-3", model.CategorySoundFile)

	tests := []struct {
		name       string
		categories []string
		want       []uint
	}{
		{name: "no filter", want: []uint{h1.ID, h2.ID, h3.ID}},
		{name: "one category", categories: []string{model.CategorySoundCD}, want: []uint{h2.ID}},
		{name: "two categories", categories: []string{model.CategorySoundFile, model.CategorySoundCD}, want: []uint{h2.ID, h3.ID}},
		{name: "no match", categories: []string{model.CategoryBookPaper}, want: []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListHeadlines(context.TODO(), tt.categories)
			require.NoError(t, err)

			ids := make([]uint, 0, len(got))
			for _, h := range got {
				ids = append(ids, h.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestGormStore_DeleteHeadline(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	h := newHeadline(t, s, "title-1", model.CategorySoundVinyl)

	require.NoError(t, s.DeleteHeadline(context.TODO(), h.ID))

	_, err := s.GetHeadline(context.TODO(), h.ID)
	assert.True(t, errors.Is(err, ErrHeadlineNotFound))

	err = s.DeleteHeadline(context.TODO(), h.ID)
	assert.True(t, errors.Is(err, ErrHeadlineNotFound))

	err = s.DeleteHeadline(context.TODO(), h.ID+100)
	assert.True(t, errors.Is(err, ErrHeadlineNotFound))

	// the row is kept
	var count int64
	require.NoError(t, s.db.Unscoped().Model(&model.Headline{}).Where("id = ?", h.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	list, err := s.ListHeadlines(context.TODO(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormStore_UpdateHeadline(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	h := newHeadline(t, s, "title-1", model.CategorySoundVinyl)
	h.Description = tester.StringPtr("description-1")
	require.NoError(t, s.UpdateHeadline(context.TODO(), h))

	h.Title = "title-2"
	h.Category = nil
	h.Description = nil
	require.NoError(t, s.UpdateHeadline(context.TODO(), h))

	got, err := s.GetHeadline(context.TODO(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, "title-2", got.Title)
	assert.Nil(t, got.Category)
	assert.Nil(t, got.Description)

	require.NoError(t, s.DeleteHeadline(context.TODO(), h.ID))
	err = s.UpdateHeadline(context.TODO(), h)
	assert.True(t, errors.Is(err, ErrHeadlineNotFound))
}

func TestGormStore_Refs(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	a := newHeadline(t, s, "a", model.CategoryBookDigital)
	b := newHeadline(t, s, "b", model.CategoryBookPaper)
	c := newHeadline(t, s, "c", model.CategorySoundCD)

	require.NoError(t, s.CreateRefs(context.TODO(), []*model.HeadlineRef{
		{OriginID: a.ID, EndID: c.ID},
		{OriginID: a.ID, EndID: b.ID},
		{OriginID: c.ID, EndID: b.ID},
	}))

	forward, err := s.ListForwardRefIDs(context.TODO(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, forward)

	backward, err := s.ListBackwardRefIDs(context.TODO(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, c.ID}, backward)

	refs, err := s.ListRefs(context.TODO(), []uint{c.ID})
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	require.NoError(t, s.DeleteRefs(context.TODO(), []*model.HeadlineRef{{OriginID: a.ID, EndID: b.ID}}))
	forward, err = s.ListForwardRefIDs(context.TODO(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, forward)

	require.NoError(t, s.DetachRefs(context.TODO(), c.ID))
	refs, err = s.ListRefs(context.TODO(), []uint{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestGormStore_ListManyHeadlines(t *testing.T) {
	db := tester.TestDB(t)
	s := NewGormStore(db)

	// more ids than sqlite binds in one statement
	headlines := tester.CreateHeadlines(t, db, 2*idBatchSize+500)
	ids := make([]uint, 0, len(headlines))
	for _, h := range headlines {
		ids = append(ids, h.ID)
	}
	first, middle, last := ids[0], ids[idBatchSize+1], ids[len(ids)-1]

	// first->last falls in the first batch by origin and the last by end
	require.NoError(t, s.CreateRefs(context.TODO(), []*model.HeadlineRef{
		{OriginID: last, EndID: middle},
		{OriginID: first, EndID: last},
		{OriginID: middle, EndID: first},
	}))

	got, err := s.ListHeadlinesFromIDs(context.TODO(), ids)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	assert.Equal(t, first, got[0].ID)
	assert.Equal(t, last, got[len(got)-1].ID)

	refs, err := s.ListRefs(context.TODO(), ids)
	require.NoError(t, err)
	pairs := make([][2]uint, 0, len(refs))
	for _, ref := range refs {
		pairs = append(pairs, [2]uint{ref.OriginID, ref.EndID})
	}
	assert.Equal(t, [][2]uint{{first, last}, {middle, first}, {last, middle}}, pairs)
}

func TestGormStore_DeleteDanglingRefs(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	a := newHeadline(t, s, "a", model.CategoryBookDigital)
	b := newHeadline(t, s, "b", model.CategoryBookPaper)
	c := newHeadline(t, s, "c", model.CategorySoundCD)

	require.NoError(t, s.CreateRefs(context.TODO(), []*model.HeadlineRef{
		{OriginID: a.ID, EndID: b.ID},
		{OriginID: b.ID, EndID: c.ID},
		{OriginID: a.ID, EndID: c.ID + 100},
	}))
	// deleted without detaching, as a direct table edit would
	require.NoError(t, s.DeleteHeadline(context.TODO(), c.ID))

	removed, err := s.DeleteDanglingRefs(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	refs, err := s.ListRefs(context.TODO(), []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, a.ID, refs[0].OriginID)
	assert.Equal(t, b.ID, refs[0].EndID)
}

func TestGormStore_TransactionRollback(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	boom := errors.New("boom")

	err := s.Transaction(context.TODO(), func(tx Store) error {
		if err := tx.CreateHeadline(context.TODO(), &model.Headline{Title: "rolled back"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := s.ListHeadlines(context.TODO(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
