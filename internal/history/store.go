// Package history persists completed translations to SQLite, newest
// first, bounded to a fixed number of entries.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/screen-translator/platform/internal/errors"
)

// Entry is one completed translation.
type Entry struct {
	ID                string    `json:"id"`
	OriginalText      string    `json:"original_text"`
	TranslatedText    string    `json:"translated_text"`
	SourceLang        string    `json:"source_lang"`
	TargetLang        string    `json:"target_lang"`
	OCREngine         string    `json:"ocr_engine"`
	TranslationEngine string    `json:"translation_engine"`
	Timestamp         time.Time `json:"timestamp"`
}

// Store is a bounded SQLite-backed history. Appends that hit storage
// errors are buffered and retried on the next append, so a transient
// disk problem loses nothing.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	max     int
	pending []Entry
	logger  *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	id                 TEXT NOT NULL,
	original_text      TEXT NOT NULL,
	translated_text    TEXT NOT NULL,
	source_lang        TEXT NOT NULL,
	target_lang        TEXT NOT NULL,
	ocr_engine         TEXT NOT NULL,
	translation_engine TEXT NOT NULL,
	created_at         TEXT NOT NULL
);`

// Open creates or opens the history database at path. max bounds the
// number of retained entries; older rows are evicted on append.
func Open(path string, max int, logger *slog.Logger) (*Store, error) {
	if max <= 0 {
		return nil, apperrors.Newf(apperrors.InvalidInput, "history max must be positive, got %d", max)
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.HistoryPersistFailure, "open history db")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.HistoryPersistFailure, "create history schema")
	}

	return &Store{db: db, max: max, logger: logger}, nil
}

// Append persists an entry. Any previously buffered entries are flushed
// first, oldest first, so ordering is preserved across transient
// failures. On failure the entry joins the buffer and the error is
// returned for the caller to report.
func (s *Store) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := append(s.pending, e)
	for i, pe := range queue {
		if err := s.insert(pe); err != nil {
			s.pending = queue[i:]
			s.logger.Warn("history append failed, buffering",
				"buffered", len(s.pending), "error", err)
			return apperrors.Wrap(err, apperrors.HistoryPersistFailure, "append history entry")
		}
	}
	s.pending = nil

	if err := s.evict(); err != nil {
		s.logger.Warn("history eviction failed", "error", err)
	}
	return nil
}

func (s *Store) insert(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO translations
			(id, original_text, translated_text, source_lang, target_lang, ocr_engine, translation_engine, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OriginalText, e.TranslatedText, e.SourceLang, e.TargetLang,
		e.OCREngine, e.TranslationEngine, e.Timestamp.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) evict() error {
	_, err := s.db.Exec(
		`DELETE FROM translations WHERE rowid NOT IN
			(SELECT rowid FROM translations ORDER BY rowid DESC LIMIT ?)`, s.max)
	return err
}

// All returns retained entries newest first.
func (s *Store) All() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, original_text, translated_text, source_lang, target_lang, ocr_engine, translation_engine, created_at
		 FROM translations ORDER BY rowid DESC`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.HistoryPersistFailure, "query history")
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.OriginalText, &e.TranslatedText, &e.SourceLang,
			&e.TargetLang, &e.OCREngine, &e.TranslationEngine, &ts); err != nil {
			return nil, apperrors.Wrap(err, apperrors.HistoryPersistFailure, "scan history row")
		}
		if t, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			e.Timestamp = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.HistoryPersistFailure, "iterate history rows")
	}
	return entries, nil
}

// Clear removes all entries, including any buffered ones.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	if _, err := s.db.Exec(`DELETE FROM translations`); err != nil {
		return apperrors.Wrap(err, apperrors.HistoryPersistFailure, "clear history")
	}
	return nil
}

// Len reports the number of persisted entries.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM translations`).Scan(&n); err != nil {
		return 0, apperrors.Wrap(err, apperrors.HistoryPersistFailure, "count history")
	}
	return n, nil
}

// Close closes the database. Buffered entries that never flushed are
// dropped.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
