package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefault()
	cfg.Upstreams = map[string]UpstreamConfig{
		"backend": {BaseURL: "https://backend.internal", Auth: AuthBearer},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "empty listen address",
			mutate:    func(cfg *Config) { cfg.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "listen address without port",
			mutate:    func(cfg *Config) { cfg.Server.ListenAddress = "localhost" },
			wantField: "server.listen_address",
		},
		{
			name:      "no upstreams",
			mutate:    func(cfg *Config) { cfg.Upstreams = nil },
			wantField: "upstreams",
		},
		{
			name: "upstream without base url",
			mutate: func(cfg *Config) {
				cfg.Upstreams["payment"] = UpstreamConfig{Auth: AuthNone}
			},
			wantField: "upstreams.payment.base_url",
		},
		{
			name: "upstream with bad scheme",
			mutate: func(cfg *Config) {
				cfg.Upstreams["payment"] = UpstreamConfig{BaseURL: "ftp://pay.example", Auth: AuthNone}
			},
			wantField: "upstreams.payment.base_url",
		},
		{
			name: "header_key without key",
			mutate: func(cfg *Config) {
				cfg.Upstreams["shipping_v1"] = UpstreamConfig{
					BaseURL: "https://api.shipping.example", Auth: AuthHeaderKey, HeaderName: "key",
				}
			},
			wantField: "upstreams.shipping_v1.api_key",
		},
		{
			name: "unknown auth scheme",
			mutate: func(cfg *Config) {
				u := cfg.Upstreams["backend"]
				u.Auth = "oauth2"
				cfg.Upstreams["backend"] = u
			},
			wantField: "upstreams.backend.auth",
		},
		{
			name:      "unknown log level",
			mutate:    func(cfg *Config) { cfg.Telemetry.LogLevel = "verbose" },
			wantField: "telemetry.log_level",
		},
		{
			name:      "unknown log format",
			mutate:    func(cfg *Config) { cfg.Telemetry.LogFormat = "logfmt" },
			wantField: "telemetry.log_format",
		},
		{
			name:      "zero audit buffer",
			mutate:    func(cfg *Config) { cfg.Audit.BufferSize = -1 },
			wantField: "audit.buffer_size",
		},
		{
			name:      "non-positive rate",
			mutate:    func(cfg *Config) { cfg.RateLimit.RequestsPerSecond = -5 },
			wantField: "rate_limit.requests_per_second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not name field %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenAddress = ""
	cfg.Telemetry.LogLevel = "verbose"
	cfg.RateLimit.RequestsPerSecond = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("collected %d errors, want 3: %v", len(verr.Errors), verr.Errors)
	}
}

func TestDisabledSectionsSkipValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.Enabled = false
	cfg.Audit.BufferSize = -1
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.RequestsPerSecond = -1

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled sections were validated: %v", err)
	}
}
