package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func start(t *testing.T, w *Watcher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return func() {
		stop()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("watcher did not stop")
		}
	}
}

func TestReloadAfterBurst(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := New([]string{dir}, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	stop := start(t, w)
	defer stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.json"), []byte("[]"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestWatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := New([]string{dir}, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	stop := start(t, w)
	defer stop()

	sub := filepath.Join(dir, "posts")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.md"), []byte("# a"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestReloadErrorIsLogged(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zap.InfoLevel)
	w, err := New([]string{dir}, func(context.Context) error {
		return errors.New("bad catalog")
	}, WithDebounce(50*time.Millisecond), WithLogger(zap.New(core)))
	require.NoError(t, err)
	stop := start(t, w)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.json"), []byte("{"), 0o644))
	require.Eventually(t, func() bool { return logs.FilterMessage("reload failed").Len() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestNewSkipsMissingRoot(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing")}, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = New(nil, nil)
	require.Error(t, err)
}

func TestRelevant(t *testing.T) {
	require.False(t, relevant(fsnotify.Event{Name: "a.json", Op: fsnotify.Chmod}))
	require.False(t, relevant(fsnotify.Event{Name: ".a.swp", Op: fsnotify.Write}))
	require.False(t, relevant(fsnotify.Event{Name: "a.json~", Op: fsnotify.Write}))
	require.True(t, relevant(fsnotify.Event{Name: "posts/a.md", Op: fsnotify.Write}))
}
