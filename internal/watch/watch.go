// Package watch reloads the entity template whenever its file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"entitysync/internal/reconcile"
)

// Reloader is satisfied by *workspace.Workspace.
type Reloader interface {
	TemplatePath() string
	ReloadTemplate(ctx context.Context) (reconcile.Report, error)
}

type Watcher struct {
	target   Reloader
	debounce time.Duration
	log      *logrus.Entry

	// OnReload, when set, is called after every reload attempt.
	OnReload func(reconcile.Report, error)
}

func New(target Reloader, debounce time.Duration, log *logrus.Entry) *Watcher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{target: target, debounce: debounce, log: log}
}

// Run watches the template's directory until ctx is cancelled. Editors often
// replace a file by renaming a temporary over it, so the directory is watched
// rather than the file, and bursts of events collapse into one reload.
func (w *Watcher) Run(ctx context.Context) error {
	path := filepath.Clean(w.target.TemplatePath())

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	w.log.WithField("path", path).Info("watching template")

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(w.debounce, func() {
			defer wg.Done()
			w.reload(ctx)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				schedule()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := w.target.ReloadTemplate(ctx)
	if err != nil {
		w.log.WithError(err).Error("template reload failed, keeping previous template")
	} else {
		w.log.WithFields(logrus.Fields{
			"objects":    len(report.Objects),
			"rebuilt":    report.Count(reconcile.Rebuilt),
			"downgraded": report.Count(reconcile.Downgraded),
		}).Info("template change applied")
	}
	if w.OnReload != nil {
		w.OnReload(report, err)
	}
}
