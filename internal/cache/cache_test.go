package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalforge/internal/model"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestEditorCache(t *testing.T) {
	mr, client := newTestClient(t)
	c := NewEditorCache(client, time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	sess := &model.EditorSession{
		ID:         "s1",
		HostID:     "host_1",
		SelectedID: "a",
		Revision:   3,
		Template: model.Template{Title: "t", Items: []model.Item{
			{ID: "a", Type: model.ItemRatingScale, Label: "Rate", VariableID: "rate",
				Config: model.RatingConfig{Max: 2, Options: []model.Option{{ID: "1", Label: "1", Value: 1}, {ID: "2", Label: "2", Value: 2}}}},
		}},
	}
	require.NoError(t, c.Set(ctx, sess))

	got, err = c.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.Revision)
	rating, ok := got.Template.Items[0].Rating()
	require.True(t, ok)
	assert.Equal(t, 2, rating.Max)

	ids, err := c.ListByHost(ctx, "host_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	mr.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got, "idle session expires")

	require.NoError(t, c.Set(ctx, sess))
	require.NoError(t, c.Delete(ctx, sess))
	ids, err = c.ListByHost(ctx, "host_1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSuggestionCache(t *testing.T) {
	_, client := newTestClient(t)
	c := NewSuggestionCache(client, time.Hour)
	ctx := context.Background()

	var out model.FormulaSuggestion
	found, err := c.Get(ctx, "formula", "average of scores", &out)
	require.NoError(t, err)
	assert.False(t, found)

	in := model.FormulaSuggestion{Formula: "(a + b) / 2", Explanation: "mean"}
	require.NoError(t, c.Set(ctx, "formula", "average of scores", in))

	found, err = c.Get(ctx, "formula", "average of scores", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in.Formula, out.Formula)

	found, err = c.Get(ctx, "template", "average of scores", &out)
	require.NoError(t, err)
	assert.False(t, found, "kinds do not share entries")
}

func TestRankingCache(t *testing.T) {
	_, client := newTestClient(t)
	c := NewRankingCache(client)
	ctx := context.Background()

	require.NoError(t, c.UpdateScore(ctx, "t1", "r1", 4))
	require.NoError(t, c.UpdateScore(ctx, "t1", "r2", 9))
	require.NoError(t, c.UpdateScore(ctx, "t1", "r3", 6))

	top, err := c.GetTop(ctx, "t1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "r2", top[0].ResponseID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "r3", top[1].ResponseID)

	rank, err := c.GetRank(ctx, "t1", "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)

	rank, err = c.GetRank(ctx, "t1", "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), rank)

	require.NoError(t, c.Delete(ctx, "t1"))
	top, err = c.GetTop(ctx, "t1", 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestReportCache(t *testing.T) {
	_, client := newTestClient(t)
	c := NewReportCache(client)
	ctx := context.Background()

	got, err := c.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, &model.TemplateReport{TemplateID: "t1", ResponseCount: 2}))
	got, err = c.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ResponseCount)

	require.NoError(t, c.Invalidate(ctx, "t1"))
	got, err = c.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
