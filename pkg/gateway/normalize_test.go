package gateway

import (
	"reflect"
	"strings"
	"testing"

	"lentera-hq/gateway/pkg/gateway/types"
	"lentera-hq/gateway/pkg/upstream"
)

func listDescriptor(upstreamName string) *Descriptor {
	return &Descriptor{Name: "test_list", Upstream: upstreamName, Shape: ShapeList}
}

func TestNormalizeSuccessList(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		wantData any
		wantMsg  string
	}{
		{
			name:     "bare array is wrapped",
			raw:      []any{map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)}},
			wantData: []any{map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)}},
			wantMsg:  "ok",
		},
		{
			name:     "single object under data becomes one-element array",
			raw:      map[string]any{"data": map[string]any{"id": float64(1)}},
			wantData: []any{map[string]any{"id": float64(1)}},
			wantMsg:  "ok",
		},
		{
			name:     "upstream envelope passes through with message",
			raw:      map[string]any{"success": true, "message": "orders loaded", "data": []any{map[string]any{"id": float64(7)}}},
			wantData: []any{map[string]any{"id": float64(7)}},
			wantMsg:  "orders loaded",
		},
		{
			name:     "envelope with null data defaults to empty array",
			raw:      map[string]any{"success": true, "data": nil},
			wantData: []any{},
			wantMsg:  "ok",
		},
		{
			name:     "unrecognized object fails open to empty list",
			raw:      map[string]any{"rows": []any{}},
			wantData: []any{},
			wantMsg:  "ok",
		},
		{
			name:     "scalar fails open to empty list",
			raw:      "unexpected",
			wantData: []any{},
			wantMsg:  "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NormalizeSuccess(listDescriptor(upstream.NameBackend), tt.raw)
			if !env.Success {
				t.Fatalf("Success = false, env = %+v", env)
			}
			if !reflect.DeepEqual(env.Data, tt.wantData) {
				t.Errorf("Data = %#v, want %#v", env.Data, tt.wantData)
			}
			if env.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

func TestNormalizePagination(t *testing.T) {
	raw := map[string]any{
		"success":    true,
		"data":       []any{},
		"pagination": map[string]any{"page": float64(2), "total": float64(40)},
	}
	env := NormalizeSuccess(listDescriptor(upstream.NameBackend), raw)

	pag, ok := env.Pagination.(map[string]any)
	if !ok {
		t.Fatalf("Pagination = %#v, want forwarded verbatim", env.Pagination)
	}
	if pag["page"] != float64(2) || pag["total"] != float64(40) {
		t.Errorf("Pagination = %#v", pag)
	}

	t.Run("never synthesized", func(t *testing.T) {
		env := NormalizeSuccess(listDescriptor(upstream.NameBackend), []any{})
		if env.Pagination != nil {
			t.Errorf("Pagination = %#v, want nil when upstream sent none", env.Pagination)
		}
	})
}

func TestNormalizeDetail(t *testing.T) {
	d := &Descriptor{Name: "test_detail", Upstream: upstream.NameBackend, Shape: ShapeDetail}

	t.Run("object is preserved not array-wrapped", func(t *testing.T) {
		env := NormalizeSuccess(d, map[string]any{"data": map[string]any{"id": float64(1)}})
		obj, ok := env.Data.(map[string]any)
		if !ok {
			t.Fatalf("Data = %#v (%T), detail must stay an object", env.Data, env.Data)
		}
		if obj["id"] != float64(1) {
			t.Errorf("Data = %#v", obj)
		}
	})

	t.Run("naked object is the resource", func(t *testing.T) {
		env := NormalizeSuccess(d, map[string]any{"id": float64(9), "status": "paid"})
		obj, ok := env.Data.(map[string]any)
		if !ok || obj["status"] != "paid" {
			t.Errorf("Data = %#v", env.Data)
		}
	})

	t.Run("upstream failure envelope is honored", func(t *testing.T) {
		env := NormalizeSuccess(d, map[string]any{"success": false, "message": "order not found"})
		if env.Success {
			t.Error("Success = true for an upstream success:false payload")
		}
		if env.Message != "order not found" {
			t.Errorf("Message = %q", env.Message)
		}
	})
}

func TestShippingV1Reshape(t *testing.T) {
	raw := map[string]any{
		"rajaongkir": map[string]any{
			"status":  map[string]any{"code": float64(200), "description": "OK"},
			"results": []any{map[string]any{"city": "Bandung"}},
		},
	}
	env := NormalizeSuccess(listDescriptor(upstream.NameShippingV1), raw)
	if !env.Success {
		t.Fatalf("env = %+v", env)
	}
	data, ok := env.Data.([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("Data = %#v, want unwrapped results array", env.Data)
	}
}

func TestShippingV2MetaLift(t *testing.T) {
	raw := map[string]any{
		"meta":    map[string]any{"page": float64(1), "total": float64(12)},
		"data":    []any{map[string]any{"label": "Jakarta Selatan"}},
		"success": true,
	}
	env := NormalizeSuccess(listDescriptor(upstream.NameShippingV2), raw)
	if env.Pagination == nil {
		t.Fatalf("meta not lifted to pagination: %+v", env)
	}
}

func TestParseBody(t *testing.T) {
	t.Run("html body is classified separately", func(t *testing.T) {
		_, err := ParseBody([]byte("<!DOCTYPE html><html><body>502 Bad Gateway</body></html>"))
		if err == nil {
			t.Fatal("ParseBody() accepted HTML")
		}
		env := EnvelopeForParseError(err)
		if env.Code != types.CodeUpstreamError {
			t.Errorf("Code = %q", env.Code)
		}
		if strings.Contains(env.Message, "<") {
			t.Errorf("Message leaks HTML: %q", env.Message)
		}
	})

	t.Run("garbage is rejected without echoing the body", func(t *testing.T) {
		_, err := ParseBody([]byte("mysql gone away {{{"))
		if err == nil {
			t.Fatal("ParseBody() accepted garbage")
		}
		env := EnvelopeForParseError(err)
		if strings.Contains(env.Message, "mysql") {
			t.Errorf("Message echoes upstream body: %q", env.Message)
		}
	})

	t.Run("empty body parses to nil", func(t *testing.T) {
		v, err := ParseBody([]byte("  \n"))
		if err != nil || v != nil {
			t.Errorf("ParseBody(empty) = %v, %v", v, err)
		}
	})

	t.Run("valid json", func(t *testing.T) {
		v, err := ParseBody([]byte(`{"success":true}`))
		if err != nil {
			t.Fatalf("ParseBody() error = %v", err)
		}
		if _, ok := v.(map[string]any); !ok {
			t.Errorf("parsed = %T", v)
		}
	})
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<!DOCTYPE html><html>", true},
		{"  \n<html lang=\"en\">", true},
		{"<HTML>", true},
		{`{"success":true}`, false},
		{"plain text error", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHTML([]byte(tt.in)); got != tt.want {
			t.Errorf("IsHTML(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkNormalizeSuccessList(b *testing.B) {
	d := listDescriptor(upstream.NameBackend)
	body := []byte(`{"success":true,"message":"ok","data":[` +
		strings.Repeat(`{"id":1,"produk":"Paket A","harga":150000},`, 49) +
		`{"id":50,"produk":"Paket B","harga":200000}],` +
		`"pagination":{"page":1,"per_page":50,"total":500}}`)

	raw, err := ParseBody(body)
	if err != nil {
		b.Fatalf("ParseBody() error = %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		env := NormalizeSuccess(d, raw)
		if !env.Success {
			b.Fatal("normalization failed")
		}
	}
}
