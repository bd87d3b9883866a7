package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.db")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	fired := make(chan struct{}, 8)
	w, err := New(path, 20*time.Millisecond, nil, func() { fired <- struct{}{} })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("expected change callback")
	}
}

func TestWatcher_FiresOnWALSibling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.db")

	fired := make(chan struct{}, 8)
	w, err := New(path, 20*time.Millisecond, nil, func() { fired <- struct{}{} })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path+"-wal", []byte("x"), 0o644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("expected change callback for -wal file")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	w := &Watcher{base: "todo.db"}

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"/x/todo.db", fsnotify.Write, true},
		{"/x/todo.db-journal", fsnotify.Create, true},
		{"/x/todo.db-shm", fsnotify.Remove, true},
		{"/x/todo.db.bak", fsnotify.Write, false},
		{"/x/other.db", fsnotify.Write, false},
		{"/x/todo.db", fsnotify.Chmod, false},
	}
	for _, tt := range tests {
		got := w.relevant(fsnotify.Event{Name: tt.name, Op: tt.op})
		assert.Equal(t, tt.want, got, "%s %s", tt.name, tt.op)
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")
	w, err := New(path, 0, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "todo.db"), 0, nil, func() {})
	assert.Error(t, err)
}
