// Package config reads the server configuration from flags, falling back to
// environment variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string
	ContentDir string
	// BaseURL is the public address of this API, used for asset links.
	BaseURL string

	PrometheusURL   string
	IXPManagerURL   string
	LookingGlassURL string
	BirdFile        string

	ListmonkURL          string
	ListmonkUser         string
	ListmonkPasswordFile string
	ListmonkLists        []int

	// PushStats serves statistics only from the background refresher.
	PushStats       bool
	RefreshInterval time.Duration
	FailureDelay    time.Duration
	UserAgent       string

	LogLevel  string
	LogPretty bool
}

// Load parses args (without the program name). Every flag defaults to the
// environment variable named in its usage text.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("foundation-api", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ListenAddr, "listen", getEnv("FOUNDATION_LISTEN_ADDR", ":8080"), "listen address (FOUNDATION_LISTEN_ADDR)")
	fs.StringVar(&cfg.ContentDir, "content-dir", getEnv("FOUNDATION_CONTENT_DIR", "content"), "content root (FOUNDATION_CONTENT_DIR)")
	fs.StringVar(&cfg.BaseURL, "base-url", getEnv("FOUNDATION_BASE_URL", "http://localhost:8080"), "public URL of this API (FOUNDATION_BASE_URL)")

	fs.StringVar(&cfg.PrometheusURL, "prometheus-url", os.Getenv("FOUNDATION_PROMETHEUS_URL"), "Prometheus URL, empty disables /stats (FOUNDATION_PROMETHEUS_URL)")
	fs.StringVar(&cfg.IXPManagerURL, "ixp-manager-url", os.Getenv("FOUNDATION_IXP_MANAGER_URL"), "IXP Manager URL, empty disables /peers (FOUNDATION_IXP_MANAGER_URL)")
	fs.StringVar(&cfg.LookingGlassURL, "looking-glass-url", os.Getenv("FOUNDATION_LOOKING_GLASS_URL"), "Alice looking glass URL, empty disables /looking-glass (FOUNDATION_LOOKING_GLASS_URL)")
	fs.StringVar(&cfg.BirdFile, "bird-file", os.Getenv("FOUNDATION_BIRD_FILE"), "rendered bird status page, empty disables /bird (FOUNDATION_BIRD_FILE)")

	fs.StringVar(&cfg.ListmonkURL, "listmonk-url", os.Getenv("FOUNDATION_LISTMONK_URL"), "listmonk URL, empty disables /mailing_lists (FOUNDATION_LISTMONK_URL)")
	fs.StringVar(&cfg.ListmonkUser, "listmonk-user", os.Getenv("FOUNDATION_LISTMONK_USER"), "listmonk API user (FOUNDATION_LISTMONK_USER)")
	fs.StringVar(&cfg.ListmonkPasswordFile, "listmonk-password-file", os.Getenv("FOUNDATION_LISTMONK_PASSWORD_FILE"), "file holding the listmonk password (FOUNDATION_LISTMONK_PASSWORD_FILE)")
	lists := fs.String("listmonk-lists", os.Getenv("FOUNDATION_LISTMONK_LISTS"), "comma separated list ids open for subscription (FOUNDATION_LISTMONK_LISTS)")

	fs.BoolVar(&cfg.PushStats, "push-stats", getEnvBool("FOUNDATION_PUSH_STATS", false), "refresh statistics in the background (FOUNDATION_PUSH_STATS)")
	fs.DurationVar(&cfg.RefreshInterval, "refresh-interval", getEnvDuration("FOUNDATION_REFRESH_INTERVAL", 5*time.Minute), "background refresh interval (FOUNDATION_REFRESH_INTERVAL)")
	fs.DurationVar(&cfg.FailureDelay, "failure-delay", getEnvDuration("FOUNDATION_FAILURE_DELAY", 10*time.Second), "delay after a failed background refresh (FOUNDATION_FAILURE_DELAY)")
	fs.StringVar(&cfg.UserAgent, "user-agent", os.Getenv("FOUNDATION_USER_AGENT"), "User-Agent for upstream requests (FOUNDATION_USER_AGENT)")

	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("FOUNDATION_LOG_LEVEL", "info"), "zerolog level (FOUNDATION_LOG_LEVEL)")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", getEnvBool("FOUNDATION_LOG_PRETTY", false), "human readable logs (FOUNDATION_LOG_PRETTY)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	ids, err := parseIDs(*lists)
	if err != nil {
		return nil, err
	}
	cfg.ListmonkLists = ids

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.ContentDir == "" {
		errs = append(errs, errors.New("content directory is required"))
	}
	if c.ListmonkURL != "" && c.ListmonkPasswordFile == "" {
		errs = append(errs, errors.New("listmonk password file is required when listmonk is enabled"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh interval must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseIDs(v string) ([]int, error) {
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mailing list id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
