package config

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// DatabaseURL overrides the individual DB_* parts when set.
	DatabaseURL string

	ConnectAttempts int
	ConnectDelay    time.Duration
	MaxOpenConns    int

	RateLimitRPS   int
	RateLimitBurst int
	CORSOrigins    []string

	// TrustedProxies lists the peers whose X-Forwarded-For header is honoured.
	// Empty means the header is ignored.
	TrustedProxies []netip.Prefix
}

func Load() (Config, error) {
	cfg := Config{
		Port:        getenv("APP_PORT", "8080"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "appuser"),
		DBPassword:  getenv("DB_PASSWORD", "app_password_here"),
		DBName:      getenv("DB_NAME", "medcore"),
		DBSSLMode:   getenv("DB_SSLMODE", "disable"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CORSOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.ConnectAttempts, err = positiveInt("DB_CONNECT_ATTEMPTS", 10); err != nil {
		return Config{}, err
	}
	if cfg.MaxOpenConns, err = positiveInt("DB_MAX_OPEN_CONNS", 1); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPS, err = positiveInt("RATE_LIMIT_RPS", 20); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = positiveInt("RATE_LIMIT_BURST", 40); err != nil {
		return Config{}, err
	}

	if cfg.TrustedProxies, err = parsePrefixes("TRUSTED_PROXIES"); err != nil {
		return Config{}, err
	}

	cfg.ConnectDelay = 3 * time.Second
	if raw := strings.TrimSpace(os.Getenv("DB_CONNECT_DELAY")); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil || delay < 0 {
			return Config{}, fmt.Errorf("DB_CONNECT_DELAY must be a non-negative duration, got %q", raw)
		}
		cfg.ConnectDelay = delay
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return value, nil
}

// parsePrefixes reads a comma-separated list of IPs or CIDR ranges. A bare
// IP becomes a single-address prefix.
func parsePrefixes(key string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range splitList(os.Getenv(key)) {
		if strings.Contains(item, "/") {
			prefix, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid CIDR %q", key, item)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid IP %q", key, item)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
