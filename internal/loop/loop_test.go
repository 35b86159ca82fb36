package loop

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	apperrors "github.com/screen-translator/platform/internal/errors"
	"github.com/screen-translator/platform/internal/history"
	"github.com/screen-translator/platform/internal/ocr"
	"github.com/screen-translator/platform/internal/translate"
)

type fakeCapturer struct {
	frames [][]byte
	calls  int
	err    error
}

func (f *fakeCapturer) Capture() ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.frames) {
		i = len(f.frames) - 1
	}
	return f.frames[i], nil
}

type fakeRecognizer struct {
	texts []string
	calls int
	err   error
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte, _ string) (ocr.Result, error) {
	f.calls++
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	i := f.calls - 1
	if i >= len(f.texts) {
		i = len(f.texts) - 1
	}
	return ocr.Result{Text: f.texts[i], Engine: ocr.EngineTesseract}, nil
}

func (f *fakeRecognizer) CurrentEngine() string { return "tesseract" }

type fakeLoopTranslator struct {
	out   string
	calls int
	err   error
}

func (f *fakeLoopTranslator) Translate(_ context.Context, _ translate.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeLoopTranslator) CurrentEngine() string { return "local_api" }

type fakeHistory struct {
	entries []history.Entry
	err     error
}

func (f *fakeHistory) Append(e history.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func testConfig() Config {
	return Config{
		Interval:         10 * time.Millisecond,
		OCRTimeout:       time.Second,
		TranslateTimeout: time.Second,
		OCRLang:          "eng",
		SourceLang:       "auto",
		TargetLang:       "es",
		HashSkipDistance: 5,
		ErrorBudget:      3,
		ErrorWindow:      time.Minute,
	}
}

func TestTickTranslatesAndPersists(t *testing.T) {
	capt := &fakeCapturer{frames: [][]byte{[]byte("frame")}}
	rec := &fakeRecognizer{texts: []string{"hello world"}}
	tr := &fakeLoopTranslator{out: "hola mundo"}
	hist := &fakeHistory{}
	l := New(testConfig(), capt, rec, tr, hist, nil)

	if !l.tick(context.Background()) {
		t.Fatal("tick requested stop")
	}
	if len(hist.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(hist.entries))
	}
	e := hist.entries[0]
	if e.ID == "" {
		t.Fatal("entry has no id")
	}
	if e.OriginalText != "hello world" || e.TranslatedText != "hola mundo" {
		t.Fatalf("entry texts: %+v", e)
	}
	if e.OCREngine != "tesseract" || e.TranslationEngine != "local_api" {
		t.Fatalf("entry engines: %+v", e)
	}

	select {
	case ev := <-l.Events():
		if ev.Type != EventTranslation || ev.Entry == nil || ev.Entry.ID != e.ID {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("no translation event emitted")
	}
}

func TestTickDeduplicatesText(t *testing.T) {
	capt := &fakeCapturer{frames: [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}}
	rec := &fakeRecognizer{texts: []string{"same", "same", "other"}}
	tr := &fakeLoopTranslator{out: "out"}
	hist := &fakeHistory{}
	l := New(testConfig(), capt, rec, tr, hist, nil)

	for i := 0; i < 3; i++ {
		if !l.tick(context.Background()) {
			t.Fatal("tick requested stop")
		}
	}
	if tr.calls != 2 {
		t.Fatalf("translator called %d times, want 2", tr.calls)
	}
	if len(hist.entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(hist.entries))
	}
}

func TestTickSkipsEmptyText(t *testing.T) {
	capt := &fakeCapturer{frames: [][]byte{[]byte("frame")}}
	rec := &fakeRecognizer{texts: []string{""}}
	tr := &fakeLoopTranslator{out: "out"}
	hist := &fakeHistory{}
	l := New(testConfig(), capt, rec, tr, hist, nil)

	if !l.tick(context.Background()) {
		t.Fatal("tick requested stop")
	}
	if tr.calls != 0 {
		t.Fatal("translator called for empty text")
	}
}

func TestTickFailedTranslationNotRetriedForSameText(t *testing.T) {
	capt := &fakeCapturer{frames: [][]byte{[]byte("f1"), []byte("f2")}}
	rec := &fakeRecognizer{texts: []string{"same", "same"}}
	tr := &fakeLoopTranslator{err: apperrors.New(apperrors.TranslationFailure, "down")}
	hist := &fakeHistory{}
	l := New(testConfig(), capt, rec, tr, hist, nil)

	for i := 0; i < 2; i++ {
		l.tick(context.Background())
	}
	if tr.calls != 1 {
		t.Fatalf("translator called %d times for unchanged text, want 1", tr.calls)
	}
}

func TestTickSkipsSimilarFrames(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.Gray{Y: uint8(x * 4)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	frame := buf.Bytes()

	capt := &fakeCapturer{frames: [][]byte{frame, frame}}
	rec := &fakeRecognizer{texts: []string{"text"}}
	tr := &fakeLoopTranslator{out: "out"}
	l := New(testConfig(), capt, rec, tr, &fakeHistory{}, nil)

	for i := 0; i < 2; i++ {
		if !l.tick(context.Background()) {
			t.Fatal("tick requested stop")
		}
	}
	if rec.calls != 1 {
		t.Fatalf("ocr ran %d times for identical frames, want 1", rec.calls)
	}
}

func TestBudgetStopsLoop(t *testing.T) {
	capt := &fakeCapturer{err: errors.New("no display")}
	l := New(testConfig(), capt, &fakeRecognizer{}, &fakeLoopTranslator{}, &fakeHistory{}, nil)

	ctx := context.Background()
	if !l.tick(ctx) || !l.tick(ctx) {
		t.Fatal("loop stopped before budget exhausted")
	}
	if l.tick(ctx) {
		t.Fatal("loop kept running past error budget")
	}

	var sawBudget bool
	for {
		select {
		case ev := <-l.Events():
			if ev.Type == EventError && ev.Message == "error budget exceeded, stopping loop" {
				sawBudget = true
			}
			continue
		default:
		}
		break
	}
	if !sawBudget {
		t.Fatal("no budget-exceeded event emitted")
	}
}

func TestStartStop(t *testing.T) {
	capt := &fakeCapturer{frames: [][]byte{[]byte("frame")}}
	rec := &fakeRecognizer{texts: []string{"hello"}}
	tr := &fakeLoopTranslator{out: "hola"}
	hist := &fakeHistory{}
	l := New(testConfig(), capt, rec, tr, hist, nil)

	if l.Status() != StatusStopped {
		t.Fatal("new loop not stopped")
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Start(context.Background()); err == nil {
		t.Fatal("want error starting a running loop")
	}
	if l.Status() != StatusRunning {
		t.Fatal("loop not running after Start")
	}

	time.Sleep(30 * time.Millisecond)
	l.Stop()
	if l.Status() != StatusStopped {
		t.Fatal("loop not stopped after Stop")
	}
	if capt.calls == 0 {
		t.Fatal("worker never ran")
	}

	// Stop is idempotent.
	l.Stop()
}
