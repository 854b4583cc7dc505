package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Evicter drops a cached track.
type Evicter interface {
	Delete(ctx context.Context, locator string) error
}

// Invalidator watches a track directory and evicts the cache entry of every
// model file that changes. Events are settled for Settle before eviction so
// a file being rewritten is evicted once.
type Invalidator struct {
	root    string
	evicter Evicter
	logger  *zap.Logger
	Settle  time.Duration
	Suffix  string
}

// NewInvalidator watches root and its immediate subdirectories.
func NewInvalidator(root string, evicter Evicter, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{
		root:    root,
		evicter: evicter,
		logger:  logger.With(zap.String("root", root)),
		Settle:  100 * time.Millisecond,
		Suffix:  ".iso",
	}
}

// Locator maps a file path under root to its grid locator.
func (inv *Invalidator) Locator(name string) (string, bool) {
	if !strings.HasSuffix(name, inv.Suffix) {
		return "", false
	}
	rel, err := filepath.Rel(inv.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Run blocks until ctx is done.
func (inv *Invalidator) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := inv.addDirs(watcher); err != nil {
		return err
	}
	inv.logger.Info("watching model grid")

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(inv.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						inv.logger.Warn("watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if loc, ok := inv.Locator(event.Name); ok {
				pending[loc] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for loc, seen := range pending {
				if now.Sub(seen) < inv.Settle {
					continue
				}
				delete(pending, loc)
				if err := inv.evicter.Delete(ctx, loc); err != nil {
					inv.logger.Warn("evict track", zap.String("locator", loc), zap.Error(err))
					continue
				}
				inv.logger.Info("track changed, cache evicted", zap.String("locator", loc))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			inv.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// minTick bounds how often pending events are scanned.
const minTick = time.Millisecond

func (inv *Invalidator) tick() time.Duration {
	if d := inv.Settle / 2; d > minTick {
		return d
	}
	return minTick
}

func (inv *Invalidator) addDirs(watcher *fsnotify.Watcher) error {
	if err := watcher.Add(inv.root); err != nil {
		return fmt.Errorf("watch %s: %w", inv.root, err)
	}
	entries, err := os.ReadDir(inv.root)
	if err != nil {
		return fmt.Errorf("read %s: %w", inv.root, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(inv.root, e.Name())
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return nil
}
