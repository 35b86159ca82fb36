// Package loop runs the capture → OCR → translate → persist pipeline
// on a fixed cadence with change gating and an error budget.
package loop

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"

	apperrors "github.com/screen-translator/platform/internal/errors"
	"github.com/screen-translator/platform/internal/history"
	"github.com/screen-translator/platform/internal/ocr"
	"github.com/screen-translator/platform/internal/syncx"
	"github.com/screen-translator/platform/internal/translate"
)

// Status is the loop lifecycle state.
type Status int

const (
	StatusStopped Status = iota
	StatusRunning
)

func (s Status) String() string {
	if s == StatusRunning {
		return "running"
	}
	return "stopped"
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// EventType discriminates loop events.
type EventType int

const (
	// EventTranslation carries a completed history entry.
	EventTranslation EventType = iota
	// EventError reports a pipeline failure.
	EventError
	// EventStatus reports a lifecycle change.
	EventStatus
)

var eventTypeNames = map[EventType]string{
	EventTranslation: "translation",
	EventError:       "error",
	EventStatus:      "status",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// MarshalJSON encodes the event type by name.
func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Event is one loop notification. Translation events carry Entry;
// error events carry Code and Message; status events carry Status.
type Event struct {
	Type    EventType      `json:"type"`
	Entry   *history.Entry `json:"entry,omitempty"`
	Code    apperrors.Code `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Status  Status         `json:"status,omitempty"`
}

// Capturer grabs one frame of the configured region.
type Capturer interface {
	Capture() ([]byte, error)
}

// Recognizer turns a frame into text and names its active engine.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, lang string) (ocr.Result, error)
	CurrentEngine() string
}

// Translator translates text and names its active engine.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (string, error)
	CurrentEngine() string
}

// History persists completed translations.
type History interface {
	Append(history.Entry) error
}

// Config tunes the loop cadence, timeouts, and failure tolerance.
type Config struct {
	Interval         time.Duration
	OCRTimeout       time.Duration
	TranslateTimeout time.Duration
	OCRLang          string
	SourceLang       string
	TargetLang       string
	HashSkipDistance int
	ErrorBudget      int
	ErrorWindow      time.Duration
}

// Loop drives the pipeline. A single worker goroutine owns all pipeline
// state; Start and Stop are safe to call from any goroutine.
type Loop struct {
	cfg    Config
	capt   Capturer
	rec    Recognizer
	tr     Translator
	hist   History
	logger *slog.Logger

	status *syncx.RWGuard[Status]
	events chan Event
	budget *errorBudget

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// worker-owned, reset on each Start
	lastText string
	lastHash *goimagehash.ImageHash
}

// New builds a stopped loop.
func New(cfg Config, capt Capturer, rec Recognizer, tr Translator, hist History, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:    cfg,
		capt:   capt,
		rec:    rec,
		tr:     tr,
		hist:   hist,
		logger: logger,
		status: syncx.NewGuard(StatusStopped),
		events: make(chan Event, 32),
		budget: newErrorBudget(cfg.ErrorBudget, cfg.ErrorWindow),
	}
}

// Events returns the notification stream. Events are dropped, not
// blocked on, when the consumer falls behind.
func (l *Loop) Events() <-chan Event { return l.events }

// Status returns the current lifecycle state.
func (l *Loop) Status() Status { return l.status.Get() }

// Start launches the worker. Starting a running loop is an error.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status.Get() == StatusRunning {
		return apperrors.New(apperrors.InvalidInput, "loop already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.lastText = ""
	l.lastHash = nil
	l.budget.Reset()

	l.status.Set(StatusRunning)
	l.emit(Event{Type: EventStatus, Status: StatusRunning})
	l.logger.Info("loop started",
		"interval", l.cfg.Interval,
		"source", l.cfg.SourceLang,
		"target", l.cfg.TargetLang)

	go l.run(runCtx, l.done)
	return nil
}

// Stop cancels the worker and waits for it to exit. Stopping a stopped
// loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer func() {
		l.status.Set(StatusStopped)
		l.emit(Event{Type: EventStatus, Status: StatusStopped})
		l.logger.Info("loop stopped")
		close(done)
	}()

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		if !l.tick(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick runs one pipeline pass. Returns false when the loop must stop.
func (l *Loop) tick(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	frame, err := l.capt.Capture()
	if err != nil {
		return l.reportError(apperrors.CaptureFailure, err)
	}

	if l.similarToLastFrame(frame) {
		return true
	}

	ocrCtx, cancelOCR := context.WithTimeout(ctx, l.cfg.OCRTimeout)
	res, err := l.rec.Recognize(ocrCtx, frame, l.cfg.OCRLang)
	cancelOCR()
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		return l.reportError(apperrors.OcrFailure, err)
	}

	text := res.Text
	if text == "" || text == l.lastText {
		return true
	}
	// Mark the text seen before translating so a failed translation of a
	// static screen is not retried every tick.
	l.lastText = text

	trCtx, cancelTr := context.WithTimeout(ctx, l.cfg.TranslateTimeout)
	translated, err := l.tr.Translate(trCtx, translate.Request{
		Text:   text,
		Source: l.cfg.SourceLang,
		Target: l.cfg.TargetLang,
	})
	cancelTr()
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		// Translation failures do not consume the error budget: the text is
		// already marked seen, so a dead backend costs one attempt per change.
		l.emit(Event{Type: EventError, Code: apperrors.CodeOf(err), Message: err.Error()})
		l.logger.Warn("translation failed", "error", err)
		return true
	}
	if translated == "" {
		return true
	}

	entry := history.Entry{
		ID:                uuid.NewString(),
		OriginalText:      text,
		TranslatedText:    translated,
		SourceLang:        l.cfg.SourceLang,
		TargetLang:        l.cfg.TargetLang,
		OCREngine:         l.rec.CurrentEngine(),
		TranslationEngine: l.tr.CurrentEngine(),
		Timestamp:         time.Now().UTC(),
	}
	if err := l.hist.Append(entry); err != nil {
		l.emit(Event{Type: EventError, Code: apperrors.CodeOf(err), Message: err.Error()})
		l.logger.Warn("history append failed", "error", err)
	}

	l.emit(Event{Type: EventTranslation, Entry: &entry})
	l.logger.Debug("translation complete",
		"chars_in", len(text), "chars_out", len(translated))
	return true
}

// similarToLastFrame gates OCR on perceptual change. The reference hash
// only advances when the frame actually differs, so a slow fade cannot
// creep under the threshold.
func (l *Loop) similarToLastFrame(frame []byte) bool {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		l.logger.Debug("frame decode failed, skipping change gate", "error", err)
		return false
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return false
	}
	if l.lastHash != nil {
		if dist, derr := l.lastHash.Distance(hash); derr == nil && dist <= l.cfg.HashSkipDistance {
			return true
		}
	}
	l.lastHash = hash
	return false
}

// reportError emits the failure and consults the budget. Returns false
// when the budget is exhausted and the loop must stop.
func (l *Loop) reportError(code apperrors.Code, err error) bool {
	if c := apperrors.CodeOf(err); c != apperrors.Unknown {
		code = c
	}
	l.emit(Event{Type: EventError, Code: code, Message: err.Error()})
	l.logger.Warn("pipeline error", "code", code, "error", err)

	if l.budget.Record() {
		l.emit(Event{
			Type:    EventError,
			Code:    apperrors.Internal,
			Message: "error budget exceeded, stopping loop",
		})
		l.logger.Error("error budget exceeded, stopping loop",
			"budget", l.cfg.ErrorBudget, "window", l.cfg.ErrorWindow)
		return false
	}
	return true
}

func (l *Loop) emit(ev Event) {
	select {
	case l.events <- ev:
	default:
		l.logger.Debug("event dropped, consumer behind", "type", ev.Type)
	}
}
