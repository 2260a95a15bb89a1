package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitysync/internal/logging"
	"entitysync/internal/reconcile"
)

type fakeReloader struct {
	path  string
	calls atomic.Int32
	err   error
}

func (f *fakeReloader) TemplatePath() string { return f.path }

func (f *fakeReloader) ReloadTemplate(context.Context) (reconcile.Report, error) {
	f.calls.Add(1)
	return reconcile.Report{}, f.err
}

func startWatcher(t *testing.T, target *fakeReloader) (*Watcher, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := New(target, 20*time.Millisecond, logging.Discard())
	results := make(chan error, 16)
	w.OnReload = func(_ reconcile.Report, err error) { results <- err }

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return w, results
}

// touchUntilReload rewrites path until a reload is reported, since the
// watcher registers asynchronously.
func touchUntilReload(t *testing.T, path string, results chan error) error {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
		select {
		case err := <-results:
			return err
		case <-tick.C:
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	target := &fakeReloader{path: filepath.Join(dir, "entity_template.json")}
	_, results := startWatcher(t, target)

	err := touchUntilReload(t, target.path, results)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, target.calls.Load(), int32(1))
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := &fakeReloader{path: filepath.Join(dir, "entity_template.json")}
	_, results := startWatcher(t, target)

	require.NoError(t, touchUntilReload(t, target.path, results))
	time.Sleep(200 * time.Millisecond)
	before := target.calls.Load()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, before, target.calls.Load())
}

func TestWatcherReportsReloadErrors(t *testing.T) {
	dir := t.TempDir()
	target := &fakeReloader{path: filepath.Join(dir, "entity_template.json"), err: errors.New("bad template")}
	_, results := startWatcher(t, target)

	err := touchUntilReload(t, target.path, results)
	assert.EqualError(t, err, "bad template")
}

func TestRunFailsForMissingDirectory(t *testing.T) {
	target := &fakeReloader{path: filepath.Join(t.TempDir(), "missing", "entity_template.json")}
	err := New(target, 0, logging.Discard()).Run(context.Background())
	assert.Error(t, err)
}
