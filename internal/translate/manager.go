package translate

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/screen-translator/platform/internal/errors"
	"github.com/screen-translator/platform/internal/registry"
	"github.com/screen-translator/platform/internal/resilience"
)

// entry pairs an engine with its own circuit breaker so one failing
// backend never poisons the others.
type entry struct {
	engine  Engine
	breaker *resilience.Breaker
}

// Manager owns the engine registry and wraps every call with retry and
// per-engine circuit breaking.
type Manager struct {
	engines  *registry.Registry[entry]
	retryCfg resilience.RetryConfig
	logger   *slog.Logger
}

// NewManager builds a manager over the given engines. Registration
// order determines cycle order; the first engine becomes current.
// At least one engine must be provided.
func NewManager(engines []Engine, logger *slog.Logger) (*Manager, error) {
	if len(engines) == 0 {
		return nil, apperrors.New(apperrors.TranslationUnavailable, "no translation engines available")
	}
	if logger == nil {
		logger = slog.Default()
	}
	reg := registry.New[entry]()
	for _, e := range engines {
		reg.Register(e.ID().String(), entry{
			engine:  e,
			breaker: resilience.NewBreaker(resilience.DefaultBreakerConfig()),
		})
	}
	return &Manager{
		engines:  reg,
		retryCfg: resilience.TranslateRetryConfig(),
		logger:   logger,
	}, nil
}

// Translate runs the request through the current engine with retry on
// transient failures. Empty or whitespace-only text short-circuits to
// an empty result without touching the backend.
func (m *Manager) Translate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}

	id, ent, err := m.engines.Current()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationUnavailable, "no current translation engine")
	}
	if err := ent.breaker.Allow(); err != nil {
		return "", apperrors.Wrapf(err, apperrors.TranslationUnavailable, "engine %s circuit open", id)
	}

	var out string
	err = resilience.Retry(ctx, m.retryCfg, func() error {
		var callErr error
		out, callErr = ent.engine.Translate(ctx, req)
		return callErr
	})
	if err != nil {
		ent.breaker.Failure()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", apperrors.Wrapf(err, apperrors.TranslationFailure, "engine %s", id)
	}
	ent.breaker.Success()
	return out, nil
}

// Available lists registered engine IDs in cycle order.
func (m *Manager) Available() []string { return m.engines.IDs() }

// CurrentEngine returns the active engine ID.
func (m *Manager) CurrentEngine() string { return m.engines.CurrentID() }

// SetEngine switches to the named engine. Unknown names are rejected
// and the current engine is left unchanged.
func (m *Manager) SetEngine(id string) error {
	if err := m.engines.Set(id); err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "unknown translation engine %q", id)
	}
	m.logger.Info("translation engine switched", "engine", id)
	return nil
}

// NextEngine advances to the next engine in cycle order and returns
// its ID.
func (m *Manager) NextEngine() (string, error) {
	id, err := m.engines.Next()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.TranslationUnavailable, "no translation engines registered")
	}
	m.logger.Info("translation engine switched", "engine", id)
	return id, nil
}
