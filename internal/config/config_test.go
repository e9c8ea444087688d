package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestGetRedisAddr(t *testing.T) {
	// Test with the environment variable set
	expectedAddr := "redis.internal:6380"
	os.Setenv("REDIS_ADDR", expectedAddr)
	defer os.Unsetenv("REDIS_ADDR")

	result := GetRedisAddr()
	if result != expectedAddr {
		t.Errorf("Expected Redis addr %s, got %s", expectedAddr, result)
	}

	// Test with environment variable not set (should return default)
	os.Unsetenv("REDIS_ADDR")
	result = GetRedisAddr()
	if result != "localhost:6379" {
		t.Errorf("Expected default Redis addr localhost:6379, got %s", result)
	}
}

func TestGetCharacterApiUrl(t *testing.T) {
	want := "https://rickandmortyapi.com/api/character"
	got := GetCharacterApiUrl()
	if got != want {
		t.Errorf("Expected API URL %s, got %s", want, got)
	}
}

func TestGetCharacterApiUrl_EnvOverride(t *testing.T) {
	os.Setenv("CHARACTER_API_URL", "http://127.0.0.1:9999/api/character")
	defer os.Unsetenv("CHARACTER_API_URL")

	if got := GetCharacterApiUrl(); got != "http://127.0.0.1:9999/api/character" {
		t.Errorf("Expected env override, got %s", got)
	}
}

func TestGetServerPort(t *testing.T) {
	want := "8080"
	got := GetServerPort()
	if got != want {
		t.Errorf("Expected server port %s, got %s", want, got)
	}
}

func TestGetServerPort_EnvOverride(t *testing.T) {
	os.Setenv("PORT", "9090")
	defer os.Unsetenv("PORT")

	if got := GetServerPort(); got != "9090" {
		t.Errorf("Expected server port 9090, got %s", got)
	}
}

func TestGetMaxPages(t *testing.T) {
	if got := GetMaxPages(); got != 500 {
		t.Errorf("Expected max pages 500, got %d", got)
	}

	viper.Set("rickandmorty.max_pages", -3)
	defer viper.Set("rickandmorty.max_pages", 500)
	if got := GetMaxPages(); got != defaultMaxPages {
		t.Errorf("Expected fallback to %d for negative value, got %d", defaultMaxPages, got)
	}
}

func TestGetUpstreamRequestTimeout(t *testing.T) {
	// config_test.yaml overrides the 10s production value
	want := 2 * time.Second
	got := GetUpstreamRequestTimeout()
	if got != want {
		t.Errorf("Expected request timeout %v, got %v", want, got)
	}
}

func TestGetCacheExpiration(t *testing.T) {
	want := 10 * time.Minute
	got := GetCacheExpiration()
	if got != want {
		t.Errorf("Expected cache expiration %v, got %v", want, got)
	}
}

func TestIsCacheEnabled(t *testing.T) {
	if IsCacheEnabled() {
		t.Error("Expected cache to be disabled by default")
	}

	os.Setenv("CHALLENGE_CACHE_ENABLED", "true")
	defer os.Unsetenv("CHALLENGE_CACHE_ENABLED")
	if !IsCacheEnabled() {
		t.Error("Expected CHALLENGE_CACHE_ENABLED=true to enable the cache")
	}
}

func TestGetServerTimeout(t *testing.T) {
	want := "15s"
	got := GetServerTimeout("read_header_timeout")
	if got != want {
		t.Errorf("Expected read_header_timeout %s, got %s", want, got)
	}
}

func TestGetServerTimeoutDuration(t *testing.T) {
	if got := GetServerTimeoutDuration("write_timeout", time.Second); got != 60*time.Second {
		t.Errorf("Expected write_timeout 60s, got %v", got)
	}
	if got := GetServerTimeoutDuration("does_not_exist", 7*time.Second); got != 7*time.Second {
		t.Errorf("Expected fallback 7s, got %v", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", time.Minute},
		{"garbage", time.Minute},
		{"-5s", time.Minute},
		{"0s", 0},
		{"250ms", 250 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in, time.Minute); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReloadConfigForTest(t *testing.T) {
	// Should not panic or error
	ReloadConfigForTest()
}

func TestGetLogger(t *testing.T) {
	l1 := GetLogger()
	l2 := GetLogger()
	if l1 == nil || l1 != l2 {
		t.Error("Expected a single shared logger instance")
	}
}

func TestGetProjectRoot(t *testing.T) {
	root, err := getProjectRoot()
	if err != nil {
		t.Fatalf("Expected project root, got error %v", err)
	}
	if _, err := os.Stat(root + "/config.yaml"); err != nil {
		t.Errorf("Expected config.yaml at project root %s: %v", root, err)
	}
}
