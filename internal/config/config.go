package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Submit policies applied when posting the swipe results fails.
const (
	SubmitPolicyRetry    = "retry"
	SubmitPolicyNavigate = "navigate"
)

type Config struct {
	Addr              string
	DBPath            string
	APIURL            string
	APITimeout        time.Duration
	LogLevel          string
	SubmitWorkerCount int
	SubmitQueueSize   int
	SwipeDistance     float64
	SwipeVelocity     float64
	ViewportWidth     float64
	ExitDuration      time.Duration
	FrameRate         int
	SubmitPolicy      string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:swipequiz.db"),
		APIURL:            strings.TrimRight(envOr("API_URL", "http://localhost:3000"), "/"),
		APITimeout:        time.Duration(envIntOr("API_TIMEOUT_MS", 15000)) * time.Millisecond,
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		SubmitWorkerCount: envIntOr("SUBMIT_WORKER_COUNT", 2),
		SubmitQueueSize:   envIntOr("SUBMIT_QUEUE_SIZE", 32),
		SwipeDistance:     envFloatOr("SWIPE_DISTANCE", 150),
		SwipeVelocity:     envFloatOr("SWIPE_VELOCITY", 800),
		ViewportWidth:     envFloatOr("VIEWPORT_WIDTH", 390),
		ExitDuration:      time.Duration(envIntOr("EXIT_DURATION_MS", 400)) * time.Millisecond,
		FrameRate:         envIntOr("FRAME_RATE", 60),
		SubmitPolicy:      strings.ToLower(envOr("SUBMIT_POLICY", SubmitPolicyRetry)),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		problems = append(problems, fmt.Sprintf("API_URL must be an http(s) URL, got %q", c.APIURL))
	}
	if c.APITimeout <= 0 {
		problems = append(problems, "API_TIMEOUT_MS must be positive")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if c.SubmitWorkerCount <= 0 {
		problems = append(problems, "SUBMIT_WORKER_COUNT must be positive")
	}
	if c.SubmitQueueSize <= 0 {
		problems = append(problems, "SUBMIT_QUEUE_SIZE must be positive")
	}
	if c.SwipeDistance <= 0 {
		problems = append(problems, "SWIPE_DISTANCE must be positive")
	}
	if c.SwipeVelocity <= 0 {
		problems = append(problems, "SWIPE_VELOCITY must be positive")
	}
	if c.ViewportWidth <= 0 {
		problems = append(problems, "VIEWPORT_WIDTH must be positive")
	}
	if c.ExitDuration <= 0 {
		problems = append(problems, "EXIT_DURATION_MS must be positive")
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		problems = append(problems, fmt.Sprintf("FRAME_RATE must be between 1 and 240, got %d", c.FrameRate))
	}
	if c.SubmitPolicy != SubmitPolicyRetry && c.SubmitPolicy != SubmitPolicyNavigate {
		problems = append(problems, fmt.Sprintf("SUBMIT_POLICY must be %q or %q, got %q", SubmitPolicyRetry, SubmitPolicyNavigate, c.SubmitPolicy))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}
