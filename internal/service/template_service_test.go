package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalforge/internal/editor"
	"evalforge/internal/model"
)

func TestTemplateService_SaveRejectsInvalid(t *testing.T) {
	env := newTestEnv()
	bad := model.Template{Items: []model.Item{
		{ID: "a", Type: model.ItemTextInput, VariableID: "x"},
		{ID: "b", Type: model.ItemTextInput, VariableID: "x"},
	}}
	_, err := env.templates.Save(context.Background(), hostA, bad)
	assert.ErrorIs(t, err, editor.ErrInvalidTemplate)
	assert.Empty(t, env.templateRepo.docs)
}

func TestTemplateService_GetRejectsMalformedStoredTemplate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	stored := model.Template{HostID: hostA, Items: []model.Item{{ID: "a", Type: model.ItemMultipleChoice}}}
	id, err := env.templateRepo.Create(ctx, &stored)
	require.NoError(t, err)

	_, err = env.templates.Get(ctx, hostA, id)
	assert.ErrorIs(t, err, editor.ErrInvalidTemplate)
}

func TestTemplateService_Ownership(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	saved, err := env.templates.Save(ctx, hostA, editor.CreateDefaultTemplate())
	require.NoError(t, err)

	_, err = env.templates.Get(ctx, "host_b", saved.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.templates.Save(ctx, "host_b", *saved)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, env.templates.Delete(ctx, "host_b", saved.ID), ErrForbidden)

	list, err := env.templates.List(ctx, "host_b")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = env.templates.List(ctx, hostA)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.templates.Delete(ctx, hostA, saved.ID))
	_, err = env.templates.Get(ctx, hostA, saved.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.ErrorIs(t, env.templates.Delete(ctx, hostA, saved.ID), ErrTemplateNotFound)
}

func TestTemplateService_SaveKeepsCreatedAt(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	saved, err := env.templates.Save(ctx, hostA, editor.CreateDefaultTemplate())
	require.NoError(t, err)
	created := saved.CreatedAt

	saved.Title = "Renamed"
	saved.CreatedAt = created.Add(-1000)
	again, err := env.templates.Save(ctx, hostA, *saved)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Title)
	assert.True(t, created.Equal(again.CreatedAt))
}
