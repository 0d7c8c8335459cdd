package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testDefinition(baseURL string, timeout time.Duration) *Definition {
	return &Definition{
		Name:    "backend",
		BaseURL: baseURL,
		Scheme:  AuthBearerPassthrough,
		Timeout: timeout,
	}
}

func TestClientDo(t *testing.T) {
	t.Run("2xx returns body and status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
		}))
		defer srv.Close()

		client := NewClient(testDefinition(srv.URL, 5*time.Second))
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/order", nil)

		result, err := client.Do(context.Background(), req, 0)
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if !result.OK() {
			t.Errorf("OK() = false for status %d", result.StatusCode)
		}
		if string(result.Body) != `{"success":true,"data":[]}` {
			t.Errorf("body = %s", result.Body)
		}
	})

	t.Run("non-2xx is not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"wa is invalid"}`))
		}))
		defer srv.Close()

		client := NewClient(testDefinition(srv.URL, 5*time.Second))
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/otp/send", nil)

		result, err := client.Do(context.Background(), req, 0)
		if err != nil {
			t.Fatalf("Do() error = %v, want nil for non-2xx", err)
		}
		if result.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("StatusCode = %d, want 422", result.StatusCode)
		}
	})

	t.Run("timeout maps to TimeoutError within the bound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer srv.Close()

		client := NewClient(testDefinition(srv.URL, 100*time.Millisecond))
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/slow", nil)

		start := time.Now()
		_, err := client.Do(context.Background(), req, 0)
		elapsed := time.Since(start)

		var timeoutErr *TimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("Do() error = %v, want *TimeoutError", err)
		}
		if elapsed > time.Second {
			t.Errorf("call took %s, should return near the 100ms bound", elapsed)
		}
	})

	t.Run("connection refused maps to ConnectionError", func(t *testing.T) {
		// Grab a port and close it so nothing is listening.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		dead := srv.URL
		srv.Close()

		client := NewClient(testDefinition(dead, time.Second))
		req, _ := http.NewRequest(http.MethodGet, dead+"/api", nil)

		_, err := client.Do(context.Background(), req, 0)

		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatalf("Do() error = %v, want *ConnectionError", err)
		}
	})
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{
			name:    "bearer passthrough needs only base URL",
			def:     Definition{Name: "backend", BaseURL: "https://api.example.com", Scheme: AuthBearerPassthrough},
			wantErr: false,
		},
		{
			name:    "missing base URL",
			def:     Definition{Name: "backend", Scheme: AuthBearerPassthrough},
			wantErr: true,
		},
		{
			name:    "non-http base URL",
			def:     Definition{Name: "backend", BaseURL: "ftp://api.example.com"},
			wantErr: true,
		},
		{
			name:    "header key scheme requires key",
			def:     Definition{Name: "shipping_v1", BaseURL: "https://api.example.com", Scheme: AuthHeaderKey, HeaderName: "key"},
			wantErr: true,
		},
		{
			name: "header key scheme complete",
			def: Definition{
				Name: "shipping_v2", BaseURL: "https://api.example.com",
				Scheme: AuthHeaderKey, HeaderName: "x-api-key", APIKey: "k",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyAuth(t *testing.T) {
	t.Run("bearer passthrough relays inbound header verbatim", func(t *testing.T) {
		def := &Definition{Name: "backend", Scheme: AuthBearerPassthrough}
		req, _ := http.NewRequest(http.MethodGet, "https://up.example/", nil)

		def.ApplyAuth(req, "Bearer opaque-token-value")

		if got := req.Header.Get("Authorization"); got != "Bearer opaque-token-value" {
			t.Errorf("Authorization = %q", got)
		}
	})

	t.Run("header key sets provider header", func(t *testing.T) {
		def := &Definition{Name: "shipping_v1", Scheme: AuthHeaderKey, HeaderName: "key", APIKey: "rk-123"}
		req, _ := http.NewRequest(http.MethodPost, "https://up.example/cost", nil)

		def.ApplyAuth(req, "Bearer should-not-leak")

		if got := req.Header.Get("key"); got != "rk-123" {
			t.Errorf("key header = %q", got)
		}
		if got := req.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization must not be forwarded to API-key upstreams, got %q", got)
		}
	})
}

func TestRegistry(t *testing.T) {
	defs := []*Definition{
		{Name: "backend", BaseURL: "https://api.example.com", Scheme: AuthBearerPassthrough},
		{Name: "shipping_v1", BaseURL: "https://ship.example.com", Scheme: AuthHeaderKey, HeaderName: "key", APIKey: "k"},
	}

	reg, err := NewRegistry(defs, 0)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	def, client, err := reg.Resolve("backend")
	if err != nil {
		t.Fatalf("Resolve(backend) error = %v", err)
	}
	if client == nil {
		t.Fatal("Resolve(backend) returned nil client")
	}
	if def.Timeout != 15*time.Second {
		t.Errorf("default timeout not applied: %s", def.Timeout)
	}

	if _, _, err := reg.Resolve("nope"); err == nil {
		t.Error("Resolve(nope) should fail")
	}

	_, err = NewRegistry([]*Definition{defs[0], defs[0]}, 0)
	if err == nil {
		t.Error("duplicate upstream names should be rejected")
	}
}

func TestDefinitionURL(t *testing.T) {
	def := &Definition{Name: "backend", BaseURL: "https://api.example.com/"}

	if got := def.URL("/api/admin/order"); got != "https://api.example.com/api/admin/order" {
		t.Errorf("URL() = %s", got)
	}
	if got := def.URL("api/admin/order"); got != "https://api.example.com/api/admin/order" {
		t.Errorf("URL() without leading slash = %s", got)
	}
}
