package types

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeValidationError, http.StatusBadRequest},
		{CodeUpstreamError, http.StatusBadGateway},
		{CodeConnectionFailed, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternalError, http.StatusInternalServerError},
		{CodeConfigError, http.StatusInternalServerError},
		{CodeClientError, http.StatusBadRequest},
		{"", http.StatusOK},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestEnvelopeJSONShape(t *testing.T) {
	t.Run("success omits error fields", func(t *testing.T) {
		env := OK("ok", []int{1, 2})

		data, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		s := string(data)
		for _, absent := range []string{"code", "warning", "errors", "pagination"} {
			if strings.Contains(s, `"`+absent+`"`) {
				t.Errorf("success envelope should omit %q, got %s", absent, s)
			}
		}
		if !strings.Contains(s, `"data":[1,2]`) {
			t.Errorf("data not preserved: %s", s)
		}
	})

	t.Run("failure keeps null data", func(t *testing.T) {
		env := Fail(CodeUpstreamError, "invalid upstream response")

		data, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		if !strings.Contains(string(data), `"data":null`) {
			t.Errorf("failure envelope must carry explicit null data: %s", data)
		}
		if !strings.Contains(string(data), `"code":"UPSTREAM_ERROR"`) {
			t.Errorf("code missing: %s", data)
		}
	})

	t.Run("pagination forwarded verbatim", func(t *testing.T) {
		env := OK("ok", []any{})
		env.Pagination = map[string]any{"page": 2, "per_page": 10, "total": 55}

		data, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !strings.Contains(string(data), `"per_page":10`) {
			t.Errorf("pagination not forwarded: %s", data)
		}
	})
}

func TestOKList(t *testing.T) {
	env := OKList(nil)

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"data":[]`) {
		t.Errorf("nil list must serialize as empty array, got %s", data)
	}
}

func TestFailValidation(t *testing.T) {
	env := FailValidation("field produk is required", map[string][]string{
		"produk": {"required"},
	})

	if env.Code != CodeValidationError {
		t.Errorf("Code = %q, want %q", env.Code, CodeValidationError)
	}
	if len(env.Errors["produk"]) != 1 {
		t.Errorf("field errors not carried: %+v", env.Errors)
	}
}
