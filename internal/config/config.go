package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-match/internal/match"
)

type AppConfig struct {
	Mode         match.Mode
	Budget       time.Duration
	TickInterval time.Duration
	BotDelay     time.Duration

	RedisURL    string
	DatabaseURL string
	WebhookURL  string
	ResultTTL   time.Duration

	BridgeAddr  string
	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Mode:         match.ModeBot,
		Budget:       match.DefaultBudget,
		TickInterval: match.DefaultTickInterval,
		BotDelay:     match.DefaultBotDelay,
		ResultTTL:    24 * time.Hour,
	}

	if v := strings.TrimSpace(os.Getenv("MATCH_MODE")); v != "" {
		mode, err := match.ParseMode(v)
		if err != nil {
			return nil, fmt.Errorf("MATCH_MODE: %w", err)
		}
		cfg.Mode = mode
	}
	if v := strings.TrimSpace(os.Getenv("MATCH_TIME_BUDGET")); v != "" {
		budget, err := match.ParseBudget(v)
		if err != nil {
			return nil, fmt.Errorf("MATCH_TIME_BUDGET: %w", err)
		}
		cfg.Budget = budget
	}
	if n, ok := positiveInt("MATCH_TICK_MS"); ok {
		cfg.TickInterval = time.Duration(n) * time.Millisecond
	}
	// 0 is allowed: the bot answers without pacing.
	if v := strings.TrimSpace(os.Getenv("MATCH_BOT_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.BotDelay = time.Duration(n) * time.Millisecond
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.WebhookURL = strings.TrimSpace(os.Getenv("RESULT_WEBHOOK_URL"))
	if n, ok := positiveInt("RESULT_TTL_SEC"); ok {
		cfg.ResultTTL = time.Duration(n) * time.Second
	}

	cfg.BridgeAddr = strings.TrimSpace(os.Getenv("BRIDGE_ADDR"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if cfg.WebhookURL != "" && !strings.HasPrefix(cfg.WebhookURL, "http://") && !strings.HasPrefix(cfg.WebhookURL, "https://") {
		return nil, fmt.Errorf("RESULT_WEBHOOK_URL must be http(s): %q", cfg.WebhookURL)
	}
	return cfg, nil
}

// positiveInt ignores unset and unparsable values.
func positiveInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
