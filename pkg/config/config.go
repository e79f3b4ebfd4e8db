package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Optional Redis backing for the HTTP session store. Empty addr means
	// the transport falls back to its in-memory store.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Primary text-generation provider (OpenAI-compatible chat completions).
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Secondary text-generation provider (Gemini).
	GeminiAPIKey string
	GeminiModel  string

	// Per-provider timeouts for the responder chain, seconds.
	PrimaryTimeoutSec   int
	SecondaryTimeoutSec int

	// Company content blob, refreshed out-of-band by the scraper.
	ContentFile          string
	RefreshIntervalHours int

	// Document verification.
	CascadeFile   string
	OCRTimeoutSec int

	// YAML file with the funnel script and verification tunables.
	// Compiled-in defaults apply when the file is absent.
	SettingsFile string

	IDProofDir string
	ResumeDir  string

	MaxInterviewAttempts int
	SessionTTLMinutes    int

	Debug   bool
	LogJSON bool
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		PrimaryTimeoutSec:   getEnvInt("PRIMARY_TIMEOUT_SEC", 15),
		SecondaryTimeoutSec: getEnvInt("SECONDARY_TIMEOUT_SEC", 20),

		ContentFile:          getEnv("CONTENT_FILE", "data/scraped_content.txt"),
		RefreshIntervalHours: getEnvInt("CONTENT_REFRESH_HOURS", 24),

		CascadeFile:   getEnv("FACE_CASCADE_FILE", "data/facefinder"),
		OCRTimeoutSec: getEnvInt("OCR_TIMEOUT_SEC", 10),

		SettingsFile: getEnv("SETTINGS_FILE", "chatbot.yaml"),

		IDProofDir: getEnv("IDPROOF_DIR", "uploads/idproof"),
		ResumeDir:  getEnv("RESUME_DIR", "uploads/resume"),

		MaxInterviewAttempts: getEnvInt("MAX_INTERVIEW_ATTEMPTS", 2),
		SessionTTLMinutes:    getEnvInt("SESSION_TTL_MINUTES", 30),

		Debug:   getEnvBool("DEBUG", false),
		LogJSON: getEnvBool("LOG_JSON", true),
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
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
