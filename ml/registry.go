package ml

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Registry hands out the current model. Each *Model is immutable; a reload
// swaps in a new handle and in-flight requests keep the one they fetched.
type Registry struct {
	modelType string
	path      string
	current   atomic.Pointer[Model]
	logger    *zap.Logger
	onReload  func(*Model)
}

// NewRegistry loads the artifact once. Failure means no prediction service is
// available and is reported as ErrModelUnavailable.
func NewRegistry(modelType, path string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	model, err := LoadModel(modelType, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	r := &Registry{modelType: modelType, path: path, logger: logger}
	r.current.Store(model)
	logger.Info("model loaded",
		zap.String("type", model.Type),
		zap.String("path", model.Path),
		zap.String("version", model.Version))
	return r, nil
}

// StaticRegistry wraps an already loaded model.
func StaticRegistry(model *Model) *Registry {
	r := &Registry{logger: zap.NewNop()}
	if model != nil {
		r.modelType = model.Type
		r.path = model.Path
		r.current.Store(model)
	}
	return r
}

func (r *Registry) Current() (*Model, error) {
	if r == nil {
		return nil, ErrModelUnavailable
	}
	model := r.current.Load()
	if model == nil {
		return nil, ErrModelUnavailable
	}
	return model, nil
}

// Reload re-reads the artifact. On failure the previous model stays active.
func (r *Registry) Reload() error {
	model, err := LoadModel(r.modelType, r.path)
	if err != nil {
		return err
	}
	previous := r.current.Swap(model)
	fields := []zap.Field{zap.String("version", model.Version)}
	if previous != nil {
		fields = append(fields, zap.String("previous", previous.Version))
	}
	r.logger.Info("model reloaded", fields...)
	if r.onReload != nil {
		r.onReload(model)
	}
	return nil
}

// OnReload registers fn to run after every successful reload. Call it before
// Watch.
func (r *Registry) OnReload(fn func(*Model)) {
	r.onReload = fn
}

// Watch reloads the model whenever the artifact changes on disk. It blocks
// until ctx is cancelled.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory so atomic replace-by-rename is seen.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return err
	}
	target := filepath.Clean(r.path)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce = time.After(200 * time.Millisecond)
			}
		case <-debounce:
			debounce = nil
			if err := r.Reload(); err != nil {
				r.logger.Error("model reload failed, keeping previous model", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("model watcher error", zap.Error(err))
		}
	}
}
