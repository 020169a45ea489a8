package internal

import (
	"strings"
	"testing"

	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/remote"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Remote.Driver != remote.DriverNone || cfg.Cache.DocumentKey != persist.DefaultKey {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestSessionConfig(t *testing.T) {
	cfg := SessionConfig{}
	if err := cfg.Validate(); err != nil || cfg.Mode != SessionModeLocal {
		t.Fatalf("empty mode: mode=%q err=%v", cfg.Mode, err)
	}

	cfg = SessionConfig{Mode: SessionModeAuthenticated}
	if err := cfg.Validate(); err == nil {
		t.Error("authenticated without user_id should fail")
	}

	cfg = SessionConfig{Mode: SessionModeAuthenticated, UserID: "u1", Email: "a@example.com"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	sess, err := cfg.Session()
	if err != nil || !sess.Authenticated() || sess.UserID != "u1" {
		t.Errorf("session = %+v, err = %v", sess, err)
	}

	cfg = SessionConfig{Mode: "admin"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestRemoteConfig_DriverNeedsAddress(t *testing.T) {
	tests := []struct {
		cfg     RemoteConfig
		wantErr bool
	}{
		{RemoteConfig{}, false},
		{RemoteConfig{Driver: remote.DriverSQLite}, true},
		{RemoteConfig{Driver: remote.DriverSQLite, SQLitePath: "r.db"}, false},
		{RemoteConfig{Driver: remote.DriverPostgres}, true},
		{RemoteConfig{Driver: remote.DriverRedis, RedisURL: "redis://localhost:6379/0"}, false},
		{RemoteConfig{Driver: "mongo"}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%+v: err = %v, wantErr %v", tt.cfg, err, tt.wantErr)
		}
	}
}

func TestFullConfig_ValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}

	cfg = NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch port error")
	}
}
