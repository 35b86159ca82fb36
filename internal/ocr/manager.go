package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/screen-translator/platform/internal/errors"
	"github.com/screen-translator/platform/internal/ocr/aggregate"
	"github.com/screen-translator/platform/internal/registry"
)

// Manager owns the engine registry, the result cache, and the
// detection aggregator. All recognition flows through it.
type Manager struct {
	engines    *registry.Registry[Engine]
	cache      *Cache
	aggregator *aggregate.Aggregator
	logger     *slog.Logger
}

// ManagerOptions configures cache behavior and line joining.
type ManagerOptions struct {
	CacheSize int
	CacheTTL  time.Duration
	JoinWith  aggregate.JoinPolicy
}

// NewManager builds a manager over the given engines. Registration
// order determines cycle order; the first engine becomes current.
// At least one engine must be provided.
func NewManager(engines []Engine, opts ManagerOptions, logger *slog.Logger) (*Manager, error) {
	if len(engines) == 0 {
		return nil, apperrors.New(apperrors.OcrUnavailable, "no OCR engines available")
	}
	if logger == nil {
		logger = slog.Default()
	}
	reg := registry.New[Engine]()
	for _, e := range engines {
		reg.Register(e.ID().String(), e)
	}
	return &Manager{
		engines:    reg,
		cache:      NewCache(opts.CacheSize, opts.CacheTTL),
		aggregator: aggregate.New(opts.JoinWith),
		logger:     logger,
	}, nil
}

// Recognize runs OCR on the image through the current engine, serving
// repeated frames from the cache. Detection-based engines go through
// line aggregation; text-based engines are trimmed as-is.
func (m *Manager) Recognize(ctx context.Context, image []byte, lang string) (Result, error) {
	id, engine, err := m.engines.Current()
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.OcrUnavailable, "no current OCR engine")
	}

	key := Key(image, engine.ID(), lang)
	return m.cache.GetOrCompute(key, func() (Result, error) {
		start := time.Now()
		rec, err := engine.Recognize(ctx, image, lang)
		if err != nil {
			return Result{}, err
		}

		var text string
		if len(rec.Detections) > 0 {
			text = m.aggregator.Aggregate(rec.Detections)
		} else {
			text = strings.TrimSpace(rec.Text)
		}

		m.logger.Debug("ocr complete",
			"engine", id,
			"lang", lang,
			"chars", len(text),
			"duration_ms", time.Since(start).Milliseconds())
		return Result{Text: text, Engine: engine.ID(), Lang: lang}, nil
	})
}

// Available lists registered engine IDs in cycle order.
func (m *Manager) Available() []string { return m.engines.IDs() }

// CurrentEngine returns the active engine ID.
func (m *Manager) CurrentEngine() string { return m.engines.CurrentID() }

// SetEngine switches to the named engine. Unknown names are rejected
// and the current engine is left unchanged.
func (m *Manager) SetEngine(id string) error {
	if err := m.engines.Set(id); err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "unknown OCR engine %q", id)
	}
	m.cache.Purge()
	m.logger.Info("ocr engine switched", "engine", id)
	return nil
}

// NextEngine advances to the next engine in cycle order and returns
// its ID.
func (m *Manager) NextEngine() (string, error) {
	id, err := m.engines.Next()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.OcrUnavailable, "no OCR engines registered")
	}
	m.cache.Purge()
	m.logger.Info("ocr engine switched", "engine", id)
	return id, nil
}
