package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Telegram credentials
	TelegramBotToken string `long:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token (required)" required:"true"`
	TelegramChatID   string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID alerts are sent to (required)" required:"true"`

	// State files
	SeenFile       string `long:"seen-file" env:"SEEN_FILE" default:"./data/seen.json" description:"Path of the persisted seen-listings file"`
	PhoneCacheFile string `long:"phone-cache-file" env:"PHONE_CACHE_FILE" default:"./data/phone_cache.json" description:"Path of the persisted phone-number cache"`

	// Search configuration
	SearchesDir   string `long:"searches-dir" env:"SEARCHES_DIR" default:"./searches" description:"Directory containing search profile files"`
	CheckInterval int    `long:"check-interval" env:"CHECK_INTERVAL" default:"120" description:"Default refresh interval per search in seconds"`
	MatchPolicy   string `long:"match-policy" env:"MATCH_POLICY" default:"price-and-phone" choice:"price-and-phone" choice:"location-only" description:"Repost matcher discriminator"`
	RunOnce       bool   `long:"run-once" env:"RUN_ONCE" description:"Run a single check cycle per search and exit"`

	// Upstream endpoints
	FeedURL        string `long:"feed-url" env:"FEED_URL" default:"https://gw.yad2.co.il/realestate-feed/forsale/feed" description:"Upstream listing feed URL"`
	ContactURL     string `long:"contact-url" env:"CONTACT_URL" default:"https://gw.yad2.co.il/realestate-item" description:"Upstream contact endpoint base URL"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" description:"User agent string for upstream requests"`
	RequestDelayMs int    `long:"request-delay" env:"REQUEST_DELAY_MS" default:"300" description:"Minimum delay between upstream requests in milliseconds"`

	// HTTP API
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"Asia/Jerusalem" description:"Timezone for timestamps"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		TelegramBotToken: raw.TelegramBotToken,
		TelegramChatID:   raw.TelegramChatID,
		SeenFile:         raw.SeenFile,
		PhoneCacheFile:   raw.PhoneCacheFile,
		SearchesDir:      raw.SearchesDir,
		CheckInterval:    raw.CheckInterval,
		MatchPolicy:      raw.MatchPolicy,
		RunOnce:          raw.RunOnce,
		FeedURL:          raw.FeedURL,
		ContactURL:       raw.ContactURL,
		UserAgent:        raw.UserAgent,
		RequestDelayMs:   raw.RequestDelayMs,
		Port:             raw.Port,
		APIAccessKey:     raw.APIAccessKey,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
