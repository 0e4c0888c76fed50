package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/corkboard/internal/storage"
	pkgconfig "github.com/starford/corkboard/pkg/config"
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

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
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
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestStoreConfig_EmptyDriverDefaultsFS(t *testing.T) {
	cfg := StoreConfig{Path: "./boards"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty driver should default to fs: %v", err)
	}
	if cfg.Driver != storage.DriverFS {
		t.Errorf("driver = %q", cfg.Driver)
	}
}

func TestStoreConfig_DriverRequirements(t *testing.T) {
	cases := []struct {
		name string
		cfg  StoreConfig
		ok   bool
	}{
		{"fs without path", StoreConfig{Driver: "fs"}, false},
		{"redis without url", StoreConfig{Driver: "redis"}, false},
		{"redis", StoreConfig{Driver: "redis", Redis: RedisConfig{URL: "redis://localhost:6379/0"}}, true},
		{"s3 without bucket", StoreConfig{Driver: "s3", S3: S3Config{Region: "eu-west-1"}}, false},
		{"s3", StoreConfig{Driver: "s3", S3: S3Config{Region: "eu-west-1", Bucket: "boards"}}, true},
		{"postgres without dsn", StoreConfig{Driver: "postgres"}, false},
		{"postgres", StoreConfig{Driver: "postgres", Postgres: PostgresConfig{DSN: "postgres://localhost/cork"}}, true},
		{"unknown driver", StoreConfig{Driver: "floppy", Path: "x"}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestStoreConfig_Storage(t *testing.T) {
	cfg := StoreConfig{Driver: "s3", S3: S3Config{Region: "us-east-1", Bucket: "b", Prefix: "p/", PathStyle: true}}
	sc := cfg.Storage()
	if sc.Driver != "s3" || sc.S3.Bucket != "b" || sc.S3.Prefix != "p/" || !sc.S3.PathStyle {
		t.Errorf("storage config = %+v", sc)
	}
}

func TestEventsAndExportBounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Events.ViewportThrottle = 10 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("throttle above 5s should fail")
	}

	cfg = NewDefaultConfig()
	cfg.Export.Scale = 9
	if err := cfg.Validate(); err == nil {
		t.Error("export scale above 4 should fail")
	}

	cfg = NewDefaultConfig()
	cfg.Export = ExportConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero export section should fall back to defaults: %v", err)
	}
	if opts := cfg.Export.Options(); opts.Scale != 0 {
		t.Errorf("options = %+v", opts)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CORKBOARD_TEST_TOKEN", "s3cret")
	data := `
app:
  log_level: debug
  http:
    port: 9090
store:
  driver: redis
  redis:
    url: redis://localhost:6379/1
sqlite:
  path: /tmp/cork.db
auth:
  mode: token
  token: ${CORKBOARD_TEST_TOKEN}
events:
  viewport_throttle: 100ms
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9090 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Store.Driver != "redis" || cfg.Store.Redis.URL != "redis://localhost:6379/1" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Events.ViewportThrottle != 100*time.Millisecond {
		t.Errorf("throttle = %v", cfg.Events.ViewportThrottle)
	}
	if cfg.Export.Padding != 40 {
		t.Errorf("export defaults lost: %+v", cfg.Export)
	}
}
