package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string
	LogLevel  string

	// Text generation provider (OpenAI-compatible endpoint).
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	// Email transport. Empty user/password puts the email channel in
	// skip mode.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	// Messaging-platform channels. Empty credentials select mock mode.
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TelegramBotToken   string

	AssetsDir string

	SchedulerPollInterval time.Duration
	SchedulerGraceWindow  time.Duration
	SchedulerWorkers      int
	GenerateTimeout       time.Duration
	DeliveryTimeout       time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		LogLevel:             getenv("LOG_LEVEL", "info"),

		LLMAPIKey:  getenv("LLM_API_KEY", ""),
		LLMBaseURL: getenv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:   getenv("LLM_MODEL", "llama-3.1-8b-instant"),

		SMTPHost:     getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUser:     getenv("SMTP_USER", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),

		TwilioAccountSID:   getenv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getenv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getenv("TWILIO_WHATSAPP_FROM", "whatsapp:+14155238886"),
		TelegramBotToken:   getenv("TELEGRAM_BOT_TOKEN", ""),

		AssetsDir: getenv("ASSETS_DIR", "assets"),

		SchedulerPollInterval: getenvDuration("SCHEDULER_POLL_INTERVAL", time.Second),
		SchedulerGraceWindow:  getenvDuration("SCHEDULER_GRACE_WINDOW", 15*time.Minute),
		SchedulerWorkers:      getenvInt("SCHEDULER_WORKERS", 4),
		GenerateTimeout:       getenvDuration("GENERATE_TIMEOUT", 30*time.Second),
		DeliveryTimeout:       getenvDuration("DELIVERY_TIMEOUT", 30*time.Second),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
