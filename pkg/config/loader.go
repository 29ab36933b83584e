package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Loader loads a configuration file and optionally watches it for changes.
// A failed reload retains the previous configuration.
type Loader struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	mu       sync.RWMutex
	current  *Config
	onChange func(*Config)
	done     chan struct{}
}

// NewLoader creates a Loader for the given path.
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		path:   absPath,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Load reads and validates the file, keeping the result as current.
func (l *Loader) Load() (*Config, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()

	return cfg, nil
}

// Current returns the last successfully loaded configuration.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Watch starts monitoring the file and invokes onChange after each successful
// reload. The directory is watched rather than the file because editors and
// config management tools replace files via rename.
func (l *Loader) Watch(onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	l.watcher = watcher
	l.onChange = onChange

	go l.watchLoop()

	if err := l.watcher.Add(filepath.Dir(l.path)); err != nil {
		l.watcher.Close()
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(l.path), err)
	}

	l.logger.Info("config watcher started", "path", l.path)
	return nil
}

func (l *Loader) watchLoop() {
	for {
		select {
		case <-l.done:
			return

		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			cfg, err := l.Load()
			if err != nil {
				l.logger.Error("config reload failed, keeping previous configuration",
					"path", l.path, "error", err)
				continue
			}

			l.logger.Info("config reloaded", "path", l.path)
			if l.onChange != nil {
				l.onChange(cfg)
			}

		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Error("config watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (l *Loader) Close() error {
	close(l.done)
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
