package startup

import (
	"testing"
	"time"

	"transcode-worker/internal/logging"
)

func init() {
	logging.SetLevel(logging.LevelError)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_STRING_SET", "value")

	if got := getEnv("TEST_STRING_SET", "default"); got != "value" {
		t.Errorf("getEnv() = %q, want %q", got, "value")
	}
	if got := getEnv("TEST_STRING_UNSET", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue bool
		want         bool
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_BOOL_UNSET",
			defaultValue: true,
			want:         true,
			setEnv:       false,
		},
		{
			name:         "Returns true when env var is 'true'",
			key:          "TEST_BOOL_TRUE",
			envValue:     "true",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns false when env var is 'false'",
			key:          "TEST_BOOL_FALSE",
			envValue:     "false",
			defaultValue: true,
			want:         false,
			setEnv:       true,
		},
		{
			name:         "Returns true when env var is '1'",
			key:          "TEST_BOOL_ONE",
			envValue:     "1",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns default on invalid value",
			key:          "TEST_BOOL_INVALID",
			envValue:     "maybe",
			defaultValue: true,
			want:         true,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}
			if got := getEnvBool(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT_SET", "42")
	t.Setenv("TEST_INT_INVALID", "forty-two")

	if got := getEnvInt("TEST_INT_SET", 7); got != 42 {
		t.Errorf("getEnvInt() = %d, want 42", got)
	}
	if got := getEnvInt("TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, want default 7", got)
	}
	if got := getEnvInt("TEST_INT_INVALID", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, want default 7 on invalid value", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR_SET", "5s")
	t.Setenv("TEST_DUR_INVALID", "soon")

	if got := getEnvDuration("TEST_DUR_SET", time.Second); got != 5*time.Second {
		t.Errorf("getEnvDuration() = %v, want 5s", got)
	}
	if got := getEnvDuration("TEST_DUR_UNSET", time.Second); got != time.Second {
		t.Errorf("getEnvDuration() = %v, want default 1s", got)
	}
	if got := getEnvDuration("TEST_DUR_INVALID", time.Second); got != time.Second {
		t.Errorf("getEnvDuration() = %v, want default 1s on invalid value", got)
	}
}

func TestRedactDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "Credentials redacted",
			url:  "postgres://user:secret@db:5432/videos",
			want: "postgres://***@db:5432/videos",
		},
		{
			name: "No credentials passes through",
			url:  "postgres://db:5432/videos",
			want: "postgres://db:5432/videos",
		},
		{
			name: "Empty shows unset",
			url:  "",
			want: "(unset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactDatabaseURL(tt.url); got != tt.want {
				t.Errorf("redactDatabaseURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, info.Version)
	}
	if info.GoVersion == "" {
		t.Error("Expected non-empty Go version")
	}
}
