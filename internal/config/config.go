// Package config handles platform configuration
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// Capture region (pixels, origin top-left of the primary display)
	CaptureX      int
	CaptureY      int
	CaptureWidth  int
	CaptureHeight int

	// Loop pacing and per-stage bounds
	CaptureInterval  time.Duration
	OCRTimeout       time.Duration
	TranslateTimeout time.Duration

	// Rolling error budget for capture/OCR failures
	ErrorBudget int
	ErrorWindow time.Duration

	// Frames within this pHash Hamming distance of the previous one skip OCR
	HashSkipDistance int

	SourceLang string
	TargetLang string

	// Default engine ids; must name engines that construct successfully
	OCREngine         string
	TranslationEngine string

	// Aggregated line join policy: "space" or "newline"
	LineJoin string

	OCRCacheTTL  time.Duration
	OCRCacheSize int

	HistoryPath string
	HistoryMax  int

	TesseractLang     string
	EasyOCRAddr       string
	LocalTranslateURL string
	GeminiAPIKey      string
	GeminiModel       string
}

// Load reads configuration from the environment, consulting .env if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		CaptureX:          getEnvInt("CAPTURE_X", 0),
		CaptureY:          getEnvInt("CAPTURE_Y", 0),
		CaptureWidth:      getEnvInt("CAPTURE_WIDTH", 800),
		CaptureHeight:     getEnvInt("CAPTURE_HEIGHT", 200),
		CaptureInterval:   getEnvDuration("CAPTURE_INTERVAL", 500*time.Millisecond),
		OCRTimeout:        getEnvDuration("OCR_TIMEOUT", 10*time.Second),
		TranslateTimeout:  getEnvDuration("TRANSLATE_TIMEOUT", 15*time.Second),
		ErrorBudget:       getEnvInt("ERROR_BUDGET", 3),
		ErrorWindow:       getEnvDuration("ERROR_WINDOW", 60*time.Second),
		HashSkipDistance:  getEnvInt("HASH_SKIP_DISTANCE", 5),
		SourceLang:        getEnv("SOURCE_LANG", "auto"),
		TargetLang:        getEnv("TARGET_LANG", "en"),
		OCREngine:         getEnv("OCR_ENGINE", "tesseract"),
		TranslationEngine: getEnv("TRANSLATION_ENGINE", "local_api"),
		LineJoin:          getEnv("LINE_JOIN", "space"),
		OCRCacheTTL:       getEnvDuration("OCR_CACHE_TTL", 5*time.Second),
		OCRCacheSize:      getEnvInt("OCR_CACHE_SIZE", 64),
		HistoryPath:       getEnv("HISTORY_PATH", "translation_history.db"),
		HistoryMax:        getEnvInt("HISTORY_MAX", 100),
		TesseractLang:     getEnv("TESSERACT_LANG", "eng"),
		EasyOCRAddr:       getEnv("EASYOCR_ADDR", ""),
		LocalTranslateURL: getEnv("LOCAL_TRANSLATE_URL", "http://localhost:1188/v1/translate"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
