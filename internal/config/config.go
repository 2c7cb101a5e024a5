// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultUserAgent  = "reddit-tech-fetcher/1.0 (contact:noreply@example.com)"
	DefaultTokenURL   = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIBaseURL = "https://oauth.reddit.com"
	DefaultEnvFile    = ".env"
)

// ErrMissingSetting is returned when a required key is absent from both the
// environment and the env file.
var ErrMissingSetting = errors.New("missing required setting")

type Config struct {
	ClientID          string
	ClientSecret      string
	UserAgent         string
	TokenURL          string
	APIBaseURL        string
	RequestTimeout    time.Duration
	MaxRetries        int
	InitialBackoff    time.Duration
	RequestsPerMinute float64
	RateLimitBurst    int
	ProxyURLs         []string
	TLSFingerprint    string
	LogLevel          string
}

type LabConfig struct {
	ServerPort   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Secret       string
	RateLimit    int
	RateWindow   time.Duration
	LogLevel     string
}

// LoadConfig reads client settings from the process environment, falling
// back to the .env file in the working directory.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultEnvFile)
}

func LoadConfigFrom(envFile string) (*Config, error) {
	env, err := newSource(envFile)
	if err != nil {
		return nil, err
	}

	clientID := env.getEnv("REDDIT_CLIENT_ID", "")
	if clientID == "" {
		return nil, fmt.Errorf("%w: REDDIT_CLIENT_ID", ErrMissingSetting)
	}
	clientSecret := env.getEnv("REDDIT_CLIENT_SECRET", "")
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: REDDIT_CLIENT_SECRET", ErrMissingSetting)
	}

	proxyURLs, err := parseProxyURLs(env.getEnv("REDDIT_PROXY_URLS", ""))
	if err != nil {
		return nil, err
	}

	fingerprint := strings.ToLower(env.getEnv("REDDIT_TLS_FINGERPRINT", "none"))
	switch fingerprint {
	case "none", "chrome", "firefox", "safari", "edge":
	default:
		return nil, fmt.Errorf("invalid REDDIT_TLS_FINGERPRINT %q (choose from none, chrome, firefox, safari, edge)", fingerprint)
	}
	if fingerprint == "none" {
		fingerprint = ""
	}

	return &Config{
		ClientID:          clientID,
		ClientSecret:      clientSecret,
		UserAgent:         env.getEnv("REDDIT_USER_AGENT", DefaultUserAgent),
		TokenURL:          env.getEnv("REDDIT_TOKEN_URL", DefaultTokenURL),
		APIBaseURL:        env.getEnv("REDDIT_API_BASE_URL", DefaultAPIBaseURL),
		RequestTimeout:    env.getEnvDuration("REDDIT_REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:        env.getEnvInt("REDDIT_MAX_RETRIES", 5),
		InitialBackoff:    env.getEnvDuration("REDDIT_INITIAL_BACKOFF", 2*time.Second),
		RequestsPerMinute: env.getEnvFloat("REDDIT_REQUESTS_PER_MINUTE", 0),
		RateLimitBurst:    env.getEnvInt("REDDIT_RATE_LIMIT_BURST", 10),
		ProxyURLs:         proxyURLs,
		TLSFingerprint:    fingerprint,
		LogLevel:          env.getEnv("LOG_LEVEL", "info"),
	}, nil
}

func LoadLabConfig() (*LabConfig, error) {
	return LoadLabConfigFrom(DefaultEnvFile)
}

func LoadLabConfigFrom(envFile string) (*LabConfig, error) {
	env, err := newSource(envFile)
	if err != nil {
		return nil, err
	}

	return &LabConfig{
		ServerPort:   env.getEnv("LAB_SERVER_PORT", "5000"),
		ReadTimeout:  env.getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: env.getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		Secret:       env.getEnv("LAB_SECRET", "lab-secret-key"),
		RateLimit:    env.getEnvInt("LAB_RATE_LIMIT", 5),
		RateWindow:   env.getEnvDuration("LAB_RATE_WINDOW", 10*time.Second),
		LogLevel:     env.getEnv("LOG_LEVEL", "info"),
	}, nil
}

func parseProxyURLs(raw string) ([]string, error) {
	var proxyURLs []string
	for _, proxy := range strings.Split(strings.TrimSpace(raw), ",") {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if !strings.HasPrefix(proxy, "http://") && !strings.HasPrefix(proxy, "https://") && !strings.HasPrefix(proxy, "socks5://") {
			return nil, fmt.Errorf("invalid proxy URL format, must start with http://, https:// or socks5://: %s", proxy)
		}

		if _, err := url.Parse(proxy); err != nil {
			return nil, fmt.Errorf("invalid proxy URL %s: %w", proxy, err)
		}

		proxyURLs = append(proxyURLs, proxy)
	}
	return proxyURLs, nil
}

// source resolves keys case-insensitively; the process environment wins
// over the env file. Empty values count as unset.
type source struct {
	file map[string]string
}

func newSource(envFile string) (*source, error) {
	s := &source{}
	if envFile == "" {
		return s, nil
	}
	file, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s file: %w", envFile, err)
	}
	s.file = file
	return s, nil
}

func (s *source) lookup(key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value, true
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if v != "" && strings.EqualFold(k, key) {
			return v, true
		}
	}
	for k, v := range s.file {
		if v != "" && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (s *source) getEnv(key, defaultValue string) string {
	value, _ := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (s *source) getEnvInt(key string, defaultValue int) int {
	value, _ := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func (s *source) getEnvFloat(key string, defaultValue float64) float64 {
	value, _ := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvDuration accepts Go durations ("30s") and bare seconds ("30").
func (s *source) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, _ := s.lookup(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	return defaultValue
}
