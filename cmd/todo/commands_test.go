package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/storage"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListsCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	out, err := runCmd(t, "lists", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no task lists")

	out, err = runCmd(t, "lists", "add", "Groceries", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `created "Groceries"`)

	store, err := storage.Open(filepath.Join(dir, "todo.db"), nil)
	require.NoError(t, err)
	list, err := store.ListByTitle(context.Background(), "Groceries")
	require.NoError(t, err)
	task, err := store.SaveTask(context.Background(), list.ID, "Milk", "")
	require.NoError(t, err)
	_, err = store.SaveTask(context.Background(), list.ID, "Bread", "")
	require.NoError(t, err)
	_, err = store.DoneTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err = runCmd(t, "lists", "--config", cfgPath)
	require.NoError(t, err)
	assert.Regexp(t, `Groceries\s+1 current\s+1 completed`, out)

	out, err = runCmd(t, "lists", "rm", "Groceries", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `deleted "Groceries"`)

	out, err = runCmd(t, "lists", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no task lists")
}

func TestListsRm_Unknown(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	_, err := runCmd(t, "lists", "rm", "Nope", "--config", cfgPath)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListsAdd_RequiresTitle(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	_, err := runCmd(t, "lists", "add", "--config", cfgPath)
	assert.Error(t, err)
}
