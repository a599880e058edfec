package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/abrezinsky/luckydraw/internal/app"
	"github.com/abrezinsky/luckydraw/internal/auth"
	"github.com/abrezinsky/luckydraw/internal/logger"
)

var (
	version = "dev"
)

// envOr returns the environment value for key, or def when unset
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("Failed to load .env:", err)
	}

	port := flag.Int("port", envInt("PORT", 8081), "HTTP server port")
	dbPath := flag.String("db", envOr("DB_PATH", "luckydraw.db"), "SQLite database path")
	adminPw := flag.String("adminpw", os.Getenv("ADMIN_PASSWORD"), "Admin password (auto-generated if not set)")
	baseURL := flag.String("baseurl", os.Getenv("BASE_URL"), "Public base URL for entry QR codes (detected if not set)")
	logLevel := flag.String("loglevel", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	logFormat := flag.String("logformat", envOr("LOG_FORMAT", "text"), "Log format (text, json)")
	httpLog := flag.Bool("httplog", false, "Log every HTTP request")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `LuckyDraw - Live Event Prize Draws

Usage:
  luckydraw [options]

Options:
  -port int        HTTP server port (default 8081, env PORT)
  -db string       SQLite database path (default "luckydraw.db", env DB_PATH)
  -adminpw str     Admin password (auto-generated if not set, env ADMIN_PASSWORD)
  -baseurl str     Public base URL for entry QR codes (env BASE_URL)
  -loglevel str    Log level: debug, info, warn, error (default "info", env LOG_LEVEL)
  -logformat str   Log format: text, json (default "text", env LOG_FORMAT)
  -httplog         Log every HTTP request
  -version         Show version and exit
  -help            Show this help message

Environment only:
  JWT_SECRET        Token signing secret (random per run if not set)
  FINGERPRINT_SALT  Salt for guest device fingerprints
  CORS_ORIGINS      Comma-separated allowed origins (default "*")

Settings are also read from a .env file in the working directory.

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("luckydraw %s\n", version)
		os.Exit(0)
	}

	appLog := logger.NewWithOptions(os.Stdout, logger.ParseFormat(*logFormat), logger.ParseLevel(*logLevel))
	if *httpLog {
		appLog.EnableHTTPLogging()
	}

	password := *adminPw
	generated := password == ""
	if generated {
		password = auth.GeneratePassword()
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = auth.GenerateSecret(32)
		appLog.Warn("JWT_SECRET not set; tokens will not survive a restart")
	}
	salt := os.Getenv("FINGERPRINT_SALT")
	if salt == "" {
		salt = secret
	}

	adminAuth, err := auth.New(password, []byte(secret))
	if err != nil {
		log.Fatal("Failed to initialize auth:", err)
	}

	a, err := app.New(appLog, app.Config{
		DBPath:          *dbPath,
		BaseURL:         *baseURL,
		CORSOrigins:     splitList(os.Getenv("CORS_ORIGINS")),
		FingerprintSalt: salt,
		Auth:            adminAuth,
	})
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}

	if generated {
		appLog.Info("Admin password", "password", password)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := a.Run(ctx, fmt.Sprintf(":%d", *port))
	if err := a.Close(); err != nil {
		appLog.Warn("Failed to close database", "error", err)
	}
	if runErr != nil {
		appLog.Error("Server stopped", "error", runErr)
		os.Exit(1)
	}
}
