package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Address the recording proxy binds to; also the address the generated mock listens on.
	ListenAddr string
	// Optional admin server (health, metrics, live monitor). Empty disables it.
	AdminAddr       string
	OutDir          string
	LogLevel        string
	NoColor         bool
	CORSAllowOrigin string
	InsecureTLS     bool
	// Overall bound on one forwarded exchange. Zero means no bound.
	ForwardTimeout time.Duration
	// Upper bound for captured request and response bodies.
	BodyMaxBytes int
	// Body bytes shown per transaction by the admin API; <= 0 shows everything.
	PreviewMaxBytes int
}

// Load reads an optional .env file from the working directory and then the environment.
func Load() Config {
	_ = godotenv.Load(".env")
	return FromEnv()
}

func FromEnv() Config {
	cfg := Config{
		ListenAddr:      getEnv("LISTEN_ADDR", "127.0.0.1:8080"),
		AdminAddr:       getEnv("ADMIN_ADDR", ""),
		OutDir:          getEnv("OUT_DIR", "."),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	if os.Getenv("INSECURE_TLS") == "1" || os.Getenv("INSECURE_TLS") == "true" {
		cfg.InsecureTLS = true
	}
	cfg.ForwardTimeout = time.Duration(getEnvInt("FORWARD_TIMEOUT_MS", 120000)) * time.Millisecond
	cfg.BodyMaxBytes = getEnvInt("BODY_MAX_BYTES", 64<<20) // 64MB
	cfg.PreviewMaxBytes = getEnvInt("PREVIEW_MAX_BYTES", 4096)
	return cfg
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
