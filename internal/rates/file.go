package rates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileProvider serves rates from a table on disk. Cross rates go through the
// table base, so a single USD table converts between any listed pair.
type FileProvider struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	mu    sync.RWMutex
	table Table
}

// FileOption configures a FileProvider.
type FileOption func(*FileProvider)

// WithLogger sets the logger used for reload events.
func WithLogger(l *zap.Logger) FileOption {
	return func(p *FileProvider) { p.logger = l }
}

// WithDebounce sets how long Watch waits after the last change before
// reloading.
func WithDebounce(d time.Duration) FileOption {
	return func(p *FileProvider) { p.debounce = d }
}

// NewFileProvider loads the table at path.
func NewFileProvider(path string, opts ...FileOption) (*FileProvider, error) {
	p := &FileProvider{
		path:     path,
		debounce: 200 * time.Millisecond,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.Reload(); err != nil {
		return nil, err
	}

	return p, nil
}

// Reload re-reads the table. The previous table stays in use when the file
// cannot be read or parsed.
func (p *FileProvider) Reload() error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("opening rate table: %w", err)
	}
	defer f.Close()

	table, err := decodeTable(f)
	if err != nil {
		return fmt.Errorf("%s: %w", p.path, err)
	}

	p.mu.Lock()
	p.table = table
	p.mu.Unlock()

	return nil
}

func (p *FileProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to, err := pair(from, to)
	if err != nil {
		return 0, err
	}

	if from == to {
		return 1, nil
	}

	p.mu.RLock()
	table := p.table
	p.mu.RUnlock()

	rate, err := table.Cross(from, to)
	if err != nil {
		return 0, fmt.Errorf("%s -> %s: %w", from, to, err)
	}
	return rate, nil
}

func (p *FileProvider) Currencies(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.table.Codes(), nil
}

// Watch reloads the table whenever the file is written or replaced, until ctx
// is done. The parent directory is watched so editors that rename a new file
// into place are picked up too.
func (p *FileProvider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(p.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(p.debounce, p.reloadAndLog)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("rate table watch error", zap.Error(err))
		}
	}
}

func (p *FileProvider) reloadAndLog() {
	if err := p.Reload(); err != nil {
		p.logger.Error("rate table reload failed", zap.String("path", p.path), zap.Error(err))
		return
	}

	p.mu.RLock()
	count := len(p.table.Rates)
	p.mu.RUnlock()

	p.logger.Info("rate table reloaded", zap.String("path", p.path), zap.Int("rates", count))
}
