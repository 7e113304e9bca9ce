package trackpipe_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vvka-141/trackpipe/pkg/trackpipe"
)

func validLoadConfig() trackpipe.LoadConfig {
	return trackpipe.LoadConfig{
		InputDir: "/data/transformed",
		Connection: trackpipe.ConnectionConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "spotify",
			Username: "etl",
			Password: "secret",
		},
	}
}

func TestLoadConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*trackpipe.LoadConfig)
		wantError error
	}{
		{"valid config", func(*trackpipe.LoadConfig) {}, nil},
		{"missing input dir", func(c *trackpipe.LoadConfig) { c.InputDir = "" }, trackpipe.ErrInvalidConfig},
		{"missing host", func(c *trackpipe.LoadConfig) { c.Connection.Host = "" }, trackpipe.ErrInvalidConfig},
		{"zero port", func(c *trackpipe.LoadConfig) { c.Connection.Port = 0 }, trackpipe.ErrInvalidConfig},
		{"port too large", func(c *trackpipe.LoadConfig) { c.Connection.Port = 70000 }, trackpipe.ErrInvalidConfig},
		{"missing database", func(c *trackpipe.LoadConfig) { c.Connection.Database = "" }, trackpipe.ErrInvalidConfig},
		{"missing user", func(c *trackpipe.LoadConfig) { c.Connection.Username = "" }, trackpipe.ErrInvalidConfig},
		{"bad auth method", func(c *trackpipe.LoadConfig) { c.Connection.AuthMethod = 42 }, trackpipe.ErrUnsupportedAuthMethod},
		{"negative threads", func(c *trackpipe.LoadConfig) { c.EngineThreads = -1 }, trackpipe.ErrInvalidConfig},
		{"negative timeout", func(c *trackpipe.LoadConfig) { c.Timeout = -time.Second }, trackpipe.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validLoadConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantError == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantError) {
				t.Errorf("Validate() = %v, want errors.Is %v", err, tt.wantError)
			}
		})
	}
}

func TestLoadConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := trackpipe.LoadConfig{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n < 4 {
		t.Errorf("expected at least 4 validation errors, got %d", n)
	}
}

func TestExtractConfig_Validate(t *testing.T) {
	ok := trackpipe.ExtractConfig{OutputDir: "/tmp/x", ArchiveURL: "https://example.com/a.zip"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := trackpipe.ExtractConfig{}
	if err := missing.Validate(); !errors.Is(err, trackpipe.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    trackpipe.AuthMethod
		wantErr bool
	}{
		{"", trackpipe.AuthMethodStandard, false},
		{"standard", trackpipe.AuthMethodStandard, false},
		{"aws", trackpipe.AuthMethodAWSIAM, false},
		{"google-iam", trackpipe.AuthMethodGoogleIAM, false},
		{"azure", trackpipe.AuthMethodAzureEntraID, false},
		{"kerberos", trackpipe.AuthMethodStandard, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := trackpipe.ParseAuthMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthMethod(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAuthMethod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAuthMethod_String(t *testing.T) {
	if got := trackpipe.AuthMethodAWSIAM.String(); got != "AWS IAM" {
		t.Errorf("got %q", got)
	}
	if got := trackpipe.AuthMethod(99).String(); got != "Unknown(99)" {
		t.Errorf("got %q", got)
	}
}
