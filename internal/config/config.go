package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultCharacterAPIURL = "https://rickandmortyapi.com/api/character"
	defaultMaxPages        = 500
	defaultRequestTimeout  = 10 * time.Second
	defaultCacheExpiration = 10 * time.Minute
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// loadErrors holds config loading problems until the logger exists.
var loadErrors []loadError

type loadError struct {
	msg string
	err error
}

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		_ = godotenv.Load()

		viper.SetDefault("server.port", "8080")
		viper.SetDefault("rickandmorty.api_url", defaultCharacterAPIURL)
		viper.SetDefault("rickandmorty.max_pages", defaultMaxPages)
		viper.SetDefault("redis.addr", "localhost:6379")
		viper.SetDefault("cache.enabled", false)
		viper.SetDefault("log.level", "info")

		_ = viper.BindEnv("server.port", "PORT")
		_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
		_ = viper.BindEnv("cache.enabled", "CHALLENGE_CACHE_ENABLED")
		_ = viper.BindEnv("rickandmorty.api_url", "CHARACTER_API_URL")

		root, err := getProjectRoot()
		if err != nil {
			loadErrors = append(loadErrors, loadError{"Error finding project root", err})
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			loadErrors = append(loadErrors, loadError{"Error reading config file", err})
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			viper.AddConfigPath(root)
			if err = viper.MergeInConfig(); err != nil {
				loadErrors = append(loadErrors, loadError{"Error merging test config file", err})
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// GetCharacterApiUrl returns the base URL of the upstream character collection.
func GetCharacterApiUrl() string {
	initConfig()
	if u := viper.GetString("rickandmorty.api_url"); u != "" {
		return u
	}
	return defaultCharacterAPIURL
}

// GetMaxPages caps how many upstream pages a single aggregation may follow.
func GetMaxPages() int {
	initConfig()
	n := viper.GetInt("rickandmorty.max_pages")
	if n <= 0 {
		return defaultMaxPages
	}
	return n
}

// GetUpstreamRequestTimeout returns the per-page HTTP client timeout.
// Zero disables the client timeout.
func GetUpstreamRequestTimeout() time.Duration {
	initConfig()
	return parseDuration(viper.GetString("rickandmorty.request_timeout"), defaultRequestTimeout)
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	return serverPort
}

// IsCacheEnabled reports whether upstream pages are cached in Redis.
func IsCacheEnabled() bool {
	initConfig()
	return viper.GetBool("cache.enabled")
}

func GetCacheExpiration() time.Duration {
	initConfig()
	return parseDuration(viper.GetString("cache.expiration"), defaultCacheExpiration)
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetServerTimeoutDuration parses a server.* timeout, falling back to def when unset or invalid.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	return parseDuration(GetServerTimeout(key), def)
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	loadErrors = nil
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		initConfig()
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel())
		l, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
		for _, e := range loadErrors {
			logger.Warnw(e.msg, "error", e.err)
		}
	})
	return logger
}

func logLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
