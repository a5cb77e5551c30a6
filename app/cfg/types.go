package cfg

type Cfg struct {
	// Telegram credentials
	TelegramBotToken string
	TelegramChatID   string

	// State files
	SeenFile       string
	PhoneCacheFile string

	// Search configuration
	SearchesDir   string
	CheckInterval int
	MatchPolicy   string
	RunOnce       bool

	// Upstream endpoints
	FeedURL        string
	ContactURL     string
	UserAgent      string
	RequestDelayMs int

	// HTTP API
	Port         string
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
