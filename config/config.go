package config

import (
	"github.com/spf13/viper"
	"sync"
	"time"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("http_port", "HTTP_PORT")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("locales_path", "LOCALES_PATH")
		viper.BindEnv("max_attempts", "MAX_ATTEMPTS")
		viper.BindEnv("batch_size", "BATCH_SIZE")
		viper.BindEnv("wikipedia_url", "WIKIPEDIA_URL")
		viper.BindEnv("wikidata_url", "WIKIDATA_URL")
		viper.BindEnv("request_timeout", "REQUEST_TIMEOUT")
		viper.BindEnv("user_agent", "USER_AGENT")
		viper.BindEnv("upstream_rps", "UPSTREAM_RPS")
		viper.BindEnv("breaker_timeout", "BREAKER_TIMEOUT")
		viper.BindEnv("api_rate_limit", "API_RATE_LIMIT")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("telegram_chat_id", "TELEGRAM_CHAT_ID")
		viper.BindEnv("announce_interval", "ANNOUNCE_INTERVAL")

		viper.SetDefault("http_port", 8080)
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("locales_path", "locales")
		viper.SetDefault("max_attempts", 100)
		viper.SetDefault("batch_size", 10)
		viper.SetDefault("wikipedia_url", "https://en.wikipedia.org")
		viper.SetDefault("wikidata_url", "https://www.wikidata.org")
		viper.SetDefault("request_timeout", 10*time.Second)
		viper.SetDefault("user_agent", "daily-shoutout/1.0 (https://github.com/daily-shoutout/daily-shoutout)")
		viper.SetDefault("upstream_rps", 10)
		viper.SetDefault("breaker_timeout", 5*time.Second)
		viper.SetDefault("api_rate_limit", 60)
		viper.SetDefault("db_path", "")
		viper.SetDefault("announce_interval", time.Minute)
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	InitConfig()
	return viper.GetInt64(key)
}

func GetFloat64(key string) float64 {
	InitConfig()
	return viper.GetFloat64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
