package model

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Skufu/GlucoRisk/internal/risk"
)

// atomicDataDir is the symlink a projected volume repoints on every update.
const atomicDataDir = "..data"

// Current publishes the pipeline requests should use. A published pipeline is
// never modified; reloads swap in a new one.
type Current struct {
	p atomic.Pointer[risk.Pipeline]
}

func NewCurrent(p *risk.Pipeline) *Current {
	c := &Current{}
	c.p.Store(p)
	return c
}

// Load returns nil until a pipeline has been stored.
func (c *Current) Load() *risk.Pipeline {
	return c.p.Load()
}

func (c *Current) Store(p *risk.Pipeline) {
	c.p.Store(p)
}

// Watcher rebuilds the pipeline when either artifact changes on disk.
type Watcher struct {
	paths    Paths
	current  *Current
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
	onReload func(err error)
}

// NewWatcher watches the directories holding the artifacts, since editors and
// deploy tools usually replace files rather than write them in place.
// onReload, if non-nil, is called after every reload attempt.
func NewWatcher(paths Paths, current *Current, logger *zap.Logger, onReload func(err error)) (*Watcher, error) {
	scalerPath, err := filepath.Abs(paths.Scaler)
	if err != nil {
		return nil, fmt.Errorf("resolve scaler path: %w", err)
	}
	classifierPath, err := filepath.Abs(paths.Classifier)
	if err != nil {
		return nil, fmt.Errorf("resolve classifier path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range uniqueDirs(scalerPath, classifierPath) {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return &Watcher{
		paths:    Paths{Scaler: scalerPath, Classifier: classifierPath},
		current:  current,
		watcher:  fw,
		debounce: 250 * time.Millisecond,
		logger:   logger,
		onReload: onReload,
	}, nil
}

// Run blocks until ctx is done or the underlying watcher closes.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isArtifact(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) reload() {
	p, err := LoadPipeline(w.paths)
	if err != nil {
		w.logger.Error("model reload failed, keeping previous pipeline", zap.Error(err))
	} else {
		w.current.Store(p)
		w.logger.Info("model reloaded",
			zap.String("scaler", w.paths.Scaler),
			zap.String("classifier", w.paths.Classifier))
	}
	if w.onReload != nil {
		w.onReload(err)
	}
}

// isArtifact also matches the "..data" entry Kubernetes ConfigMap and Secret
// volumes swap atomically; those updates never touch the artifact names.
func (w *Watcher) isArtifact(name string) bool {
	name = filepath.Clean(name)
	if name == w.paths.Scaler || name == w.paths.Classifier {
		return true
	}
	if filepath.Base(name) != atomicDataDir {
		return false
	}
	dir := filepath.Dir(name)
	return dir == filepath.Dir(w.paths.Scaler) || dir == filepath.Dir(w.paths.Classifier)
}

func uniqueDirs(paths ...string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, p := range paths {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}
