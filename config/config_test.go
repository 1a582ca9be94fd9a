package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	if got := GetInt("max_attempts"); got != 100 {
		t.Errorf("max_attempts = %d, want 100", got)
	}
	if got := GetInt("batch_size"); got != 10 {
		t.Errorf("batch_size = %d, want 10", got)
	}
	if got := GetDuration("request_timeout"); got != 10*time.Second {
		t.Errorf("request_timeout = %v", got)
	}
	if got := GetDuration("breaker_timeout"); got != 5*time.Second {
		t.Errorf("breaker_timeout = %v, want 5s", got)
	}
	if got := GetString("wikipedia_url"); got != "https://en.wikipedia.org" {
		t.Errorf("wikipedia_url = %q", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("ANNOUNCE_INTERVAL", "30s")
	if got := GetInt("batch_size"); got != 25 {
		t.Errorf("batch_size = %d, want 25", got)
	}
	if got := GetDuration("announce_interval"); got != 30*time.Second {
		t.Errorf("announce_interval = %v, want 30s", got)
	}
}
