package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Posting struct {
	WindowStartHour int           // earliest clock hour a post may go out
	WindowEndHour   int           // first clock hour posting is no longer allowed
	MinInterval     time.Duration // minimum gap between two posts of one account
	MaxPostsPerDay  int
	DefaultPerDay   int
}

type Publisher struct {
	Tick           time.Duration // how often the loop scans for due posts
	EarlyTolerance time.Duration // a post may go out this early
	LateGrace      time.Duration // a post this late is still on time
	StaleAfter     time.Duration // beyond this a post is demoted to draft
	PublishPause   time.Duration // gap between two publishes within one tick
}

type Config struct {
	PostgresURI  string
	SecretKey    string
	CookieName   string
	AdminKey     string
	ListenAddr   string
	PhotosDir    string
	VideosDir    string
	Posting      Posting
	Publisher    Publisher
	LimiterDelay time.Duration
	R2           R2
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", ""),
		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "postpilot_session"),
		AdminKey:    getEnv("ADMIN_KEY", ""),
		ListenAddr:  getEnv("LISTEN_ADDR", ":3000"),
		PhotosDir:   getEnv("PHOTOS_DIR", "data/media/photos"),
		VideosDir:   getEnv("VIDEOS_DIR", "data/media/videos"),
		Posting: Posting{
			WindowStartHour: getEnvInt("POSTING_START_HOUR", 8),
			WindowEndHour:   getEnvInt("POSTING_END_HOUR", 23),
			MinInterval:     getEnvDuration("MIN_POST_INTERVAL", 30*time.Minute),
			MaxPostsPerDay:  getEnvInt("MAX_POSTS_PER_DAY", 10),
			DefaultPerDay:   getEnvInt("DEFAULT_POSTS_PER_DAY", 3),
		},
		Publisher: Publisher{
			Tick:           getEnvDuration("PUBLISH_TICK", 30*time.Second),
			EarlyTolerance: getEnvDuration("PUBLISH_EARLY_TOLERANCE", 2*time.Minute),
			LateGrace:      getEnvDuration("PUBLISH_LATE_GRACE", 10*time.Minute),
			StaleAfter:     getEnvDuration("PUBLISH_STALE_AFTER", time.Hour),
			PublishPause:   getEnvDuration("PUBLISH_PAUSE", 5*time.Second),
		},
		LimiterDelay: getEnvDuration("LIMITER_MIN_INTERVAL", 2500*time.Millisecond),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
