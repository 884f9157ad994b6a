package headline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/emrgen/headline/apis/v1"
	"github.com/emrgen/headline/internal/queue"
	"github.com/emrgen/headline/internal/server"
	"github.com/emrgen/headline/internal/service"
	"github.com/emrgen/headline/internal/store"
	"github.com/emrgen/headline/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) Client {
	t.Helper()

	s := store.NewGormStore(tester.TestDB(t))
	handler, err := server.NewHTTPHandler("/api", service.NewHeadlineService(s, queue.NewNop()))
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return NewClientWithHTTP(ts.URL+"/api", ts.Client())
}

func str(s string) *string {
	return &s
}

func TestClient_Headlines(t *testing.T) {
	c := newTestClient(t)
	ctx := context.TODO()

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categories, "sound-cd")

	first, err := c.CreateHeadline(ctx, &v1.CreateHeadlineRequest{
		Title:       str("first"),
		Category:    v1.NewOptionalString(str("sound-cd")),
		Description: v1.NewOptionalString(str("description")),
	})
	require.NoError(t, err)

	second, err := c.CreateHeadline(ctx, &v1.CreateHeadlineRequest{
		Title:       str("second"),
		Category:    v1.NewOptionalString(str("book-paper")),
		ForwardRefs: &[]uint{first.Id},
	})
	require.NoError(t, err)
	require.Len(t, second.ForwardRefs, 1)
	assert.Equal(t, first.Id, second.ForwardRefs[0].Id)

	list, err := c.ListHeadlines(ctx, "sound-cd")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []uint{second.Id}, []uint{list[0].BackwardRefs[0].Id})

	// only the title is sent, the description is kept
	updated, err := c.UpdateHeadline(ctx, &v1.UpdateHeadlineRequest{Id: first.Id, Title: str("first-renamed")})
	require.NoError(t, err)
	assert.Equal(t, "first-renamed", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "description", *updated.Description)

	updated, err = c.UpdateHeadline(ctx, &v1.UpdateHeadlineRequest{
		Id:          first.Id,
		Title:       str("first-renamed"),
		Description: v1.NewOptionalString(nil),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	require.NoError(t, c.DeleteHeadline(ctx, first.Id))

	got, err := c.GetHeadline(ctx, second.Id)
	require.NoError(t, err)
	assert.Empty(t, got.ForwardRefs)
}

func TestClient_Errors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.TODO()

	_, err := c.GetHeadline(ctx, 42)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = c.CreateHeadline(ctx, &v1.CreateHeadlineRequest{Category: v1.NewOptionalString(str("invalid-category"))})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, []string{"The title field is required."}, apiErr.Fields["title"])
	assert.Equal(t, []string{"The selected category is invalid."}, apiErr.Fields["category"])
	assert.Equal(t, "The selected category is invalid. (and 1 more error)", apiErr.Message)

	a, err := c.CreateHeadline(ctx, &v1.CreateHeadlineRequest{Title: str("a")})
	require.NoError(t, err)
	b, err := c.CreateHeadline(ctx, &v1.CreateHeadlineRequest{Title: str("b"), ForwardRefs: &[]uint{a.Id}})
	require.NoError(t, err)

	_, err = c.UpdateHeadline(ctx, &v1.UpdateHeadlineRequest{Id: a.Id, Title: str("a"), ForwardRefs: &[]uint{b.Id}})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, []string{"forwardRefs is duplicated."}, apiErr.Fields["forwardRefs"])
}
