package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/beancount-validate/logging"
)

// debounceDelay groups the events of one save; editors often write files in
// several steps.
const debounceDelay = 100 * time.Millisecond

// watch validates the file, then again after every change, until ctx is
// done. The directory is watched rather than the file so that editors
// replacing the file on save are followed.
func (r *runner) watch(ctx context.Context) error {
	abs, err := filepath.Abs(r.path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.path, err)
	}

	logger := logging.FromContext(ctx)
	rerun := func() {
		if _, err := r.run(ctx); err != nil && ctx.Err() == nil {
			r.app.ui.failure(err.Error())
		}
		r.app.ui.infof("Watching %s for changes", r.app.styles.FilePath(r.path))
	}
	rerun()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(debounceDelay)

		case <-debounce:
			debounce = nil
			if err := checkLedgerPath(r.path, r.config); err != nil {
				// Mid-save; the next event brings the file back.
				logger.Debug("ledger not readable", zap.Error(err))
				continue
			}
			logger.Info("ledger changed, validating again", zap.String("file", r.path))
			rerun()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}
