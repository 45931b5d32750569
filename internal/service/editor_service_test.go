package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalforge/internal/editor"
	"evalforge/internal/model"
)

const hostA = "host_a"

func itemIDs(t model.Template) []string {
	out := make([]string, len(t.Items))
	for i, it := range t.Items {
		out[i] = it.ID
	}
	return out
}

func TestEditorService_OpenDefault(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.False(t, sess.Template.IsSaved())
	require.Len(t, sess.Template.Items, 3)
	assert.Equal(t, sess.Template.Items[0].ID, sess.SelectedID)

	got, err := env.editors.Get(ctx, hostA, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	_, err = env.editors.Get(ctx, "host_b", sess.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.editors.Get(ctx, hostA, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = env.editors.Open(ctx, hostA, "000000000000000000000000")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestEditorService_CommandsPersistAndBroadcast(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	res, err := env.editors.AddItem(ctx, hostA, sess.ID, model.ItemRatingScale, "How clear was it?")
	require.NoError(t, err)
	it := res.Result.(model.Item)
	assert.Equal(t, "how_clear_was_it", it.VariableID)
	assert.Equal(t, int64(1), res.Session.Revision)
	assert.True(t, res.Session.Dirty)
	assert.Equal(t, it.ID, res.Session.SelectedID)

	stored, err := env.editors.Get(ctx, hostA, sess.ID)
	require.NoError(t, err)
	require.Len(t, stored.Template.Items, 4)
	rating, ok := stored.Template.Items[3].Rating()
	require.True(t, ok, "configuration survives the cache round trip")
	assert.Equal(t, 5, rating.Max)

	require.Len(t, env.broadcaster.events, 1)
	ev := env.broadcaster.events[0]
	assert.Equal(t, sess.ID, ev.sessionID)
	assert.Equal(t, EventSessionUpdated, ev.msgType)
	assert.Equal(t, "add_item", ev.payload.(SessionEvent).Command)
}

func TestEditorService_FailedCommandLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	_, err = env.editors.MoveItem(ctx, hostA, sess.ID, 0, 7)
	assert.ErrorIs(t, err, editor.ErrIndexOutOfRange)

	_, err = env.editors.UpdateItem(ctx, hostA, sess.ID, sess.Template.Items[0].ID,
		editor.ItemPatch{Config: model.SliderConfig{Max: 1, Step: 1}})
	assert.ErrorIs(t, err, editor.ErrConfigMismatch)

	stored, err := env.editors.Get(ctx, hostA, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Revision)
	assert.False(t, stored.Dirty)
	assert.Equal(t, itemIDs(sess.Template), itemIDs(stored.Template))
	assert.Empty(t, env.broadcaster.events)
}

func TestEditorService_CacheWriteFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	env.editorCache.failSet = errors.New("redis down")
	_, err = env.editors.AddItem(ctx, hostA, sess.ID, model.ItemSlider, "")
	require.Error(t, err)

	env.editorCache.failSet = nil
	stored, err := env.editors.Get(ctx, hostA, sess.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Template.Items, 3)
	assert.Empty(t, env.broadcaster.events)
}

func TestEditorService_DragAcrossCommands(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)
	first := sess.Template.Items[0].ID

	res, err := env.editors.BeginDrag(ctx, hostA, sess.ID, first)
	require.NoError(t, err)
	assert.Equal(t, first, res.Session.DragSubject)

	_, err = env.editors.BeginDrag(ctx, hostA, sess.ID, "palette:Slider")
	assert.ErrorIs(t, err, editor.ErrDragInProgress)

	res, err = env.editors.Drop(ctx, hostA, sess.ID, editor.DropEnd)
	require.NoError(t, err)
	drop := res.Result.(editor.DropResult)
	assert.Equal(t, editor.DropMoved, drop.Effect)
	assert.Equal(t, first, res.Session.Template.Items[2].ID)
	assert.Empty(t, res.Session.DragSubject)
	assert.True(t, res.Session.Dirty)

	_, err = env.editors.BeginDrag(ctx, hostA, sess.ID, "palette:Matrix Table")
	require.NoError(t, err)
	res, err = env.editors.CancelDrag(ctx, hostA, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Session.DragSubject)
	assert.Len(t, res.Session.Template.Items, 3)
}

func TestEditorService_SaveAdoptsPersistedTemplate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	_, err = env.editors.UpdateMetadata(ctx, hostA, sess.ID, editor.MetadataPatch{Title: strPtr("Interview")})
	require.NoError(t, err)

	res, err := env.editors.Save(ctx, hostA, sess.ID)
	require.NoError(t, err)
	saved := res.Result.(*model.Template)
	assert.True(t, saved.IsSaved())
	assert.Equal(t, hostA, saved.HostID)
	assert.Equal(t, saved.ID, res.Session.Template.ID)
	assert.False(t, res.Session.Dirty)
	assert.Equal(t, "Interview", res.Session.Template.Title)
	assert.Equal(t, sess.SelectedID, res.Session.SelectedID, "selection survives adoption")

	_, err = env.editors.DeleteItem(ctx, hostA, sess.ID, saved.Items[0].ID)
	require.NoError(t, err)
	res, err = env.editors.Save(ctx, hostA, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, res.Session.Template.ID, "second save updates in place")

	stored, err := env.templates.Get(ctx, hostA, saved.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	reopened, err := env.editors.Open(ctx, hostA, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, itemIDs(*stored), itemIDs(reopened.Template))
}

func TestEditorService_DeleteUnknownItemIsNotDirty(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	res, err := env.editors.DeleteItem(ctx, hostA, sess.ID, "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"deleted": false}, res.Result)
	assert.False(t, res.Session.Dirty)
	assert.Len(t, res.Session.Template.Items, 3)
}

func TestEditorService_UpdateUnknownItemIsNotDirty(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	first := sess.Template.Items[0].ID
	_, err = env.editors.DeleteItem(ctx, hostA, sess.ID, first)
	require.NoError(t, err)

	res, err := env.editors.UpdateItem(ctx, hostA, sess.ID, first, editor.ItemPatch{Label: strPtr("late edit")})
	require.NoError(t, err, "editing an item deleted by another viewer is not an error")
	assert.Equal(t, map[string]bool{"updated": false}, res.Result)
	require.Len(t, res.Session.Template.Items, 2)
	for _, it := range res.Session.Template.Items {
		assert.NotEqual(t, "late edit", it.Label)
	}

	fresh, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)
	res, err = env.editors.UpdateItem(ctx, hostA, fresh.ID, "missing", editor.ItemPatch{Label: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, res.Session.Dirty)
}

func TestEditorService_LocksReleasedAfterCommands(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := env.editors.CancelDrag(ctx, hostA, fmt.Sprintf("gone-%d", i))
		assert.ErrorIs(t, err, ErrSessionNotFound)
	}
	assert.Empty(t, env.editors.locks, "unknown sessions leave no lock behind")

	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.editors.AddItem(ctx, hostA, sess.ID, model.ItemTextInput, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := env.editors.Get(ctx, hostA, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), stored.Revision)
	assert.Len(t, stored.Template.Items, 23)
	assert.Empty(t, env.editors.locks)
}

func TestEditorService_ImportAndSelect(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	suggestion, err := MockGenerator{}.SuggestTemplate(ctx, "interview")
	require.NoError(t, err)

	_, err = env.editors.Import(ctx, hostA, sess.ID, *suggestion, "merge")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	res, err := env.editors.Import(ctx, hostA, sess.ID, *suggestion, editor.ImportAppend)
	require.NoError(t, err)
	items := res.Result.([]model.Item)
	require.Len(t, items, 2)
	assert.Len(t, res.Session.Template.Items, 5)
	assert.Equal(t, items[0].ID, res.Session.SelectedID)

	_, err = env.editors.Select(ctx, hostA, sess.ID, "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)

	res, err = env.editors.Select(ctx, hostA, sess.ID, "")
	require.NoError(t, err)
	assert.Empty(t, res.Session.SelectedID)
}

func TestEditorService_ConcurrentCommandsAreSerialised(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.editors.AddItem(ctx, hostA, sess.ID, model.ItemTextInput, "Same")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := env.editors.Get(ctx, hostA, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), stored.Revision)
	require.Len(t, stored.Template.Items, 3+n)
	assert.NoError(t, stored.Template.Validate())
}

func TestEditorService_Close(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sess, err := env.editors.Open(ctx, hostA, "")
	require.NoError(t, err)

	ids, err := env.editors.List(ctx, hostA)
	require.NoError(t, err)
	assert.Equal(t, []string{sess.ID}, ids)

	assert.ErrorIs(t, env.editors.Close(ctx, "host_b", sess.ID), ErrForbidden)
	require.NoError(t, env.editors.Close(ctx, hostA, sess.ID))
	assert.Equal(t, []string{sess.ID}, env.broadcaster.disconnected)

	_, err = env.editors.Get(ctx, hostA, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func strPtr(s string) *string { return &s }
