package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestJwget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusForbidden)
		}
		w.Write([]byte(`{"rate":0.1}`))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		path    string
		opts    []Option
		status  int
		decoded bool
	}{
		{"ok", "/ok", nil, http.StatusOK, true},
		{"error body decoded", "/fail", nil, http.StatusForbidden, true},
		{"error body skipped", "/fail", []Option{RequireOK()}, http.StatusForbidden, false},
		{"hidden path", "/ok", []Option{HidePath(), RequireOK()}, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			status, err := Jwget(context.Background(), srv.Client(), srv.URL+tt.path, &got, tt.opts...)
			if err != nil {
				t.Fatalf("Jwget() unexpected error: %v", err)
			}
			if status != tt.status {
				t.Errorf("Jwget() status = %d, want %d", status, tt.status)
			}
			if decoded := got != nil; decoded != tt.decoded {
				t.Errorf("Jwget() decoded = %v, want %v", decoded, tt.decoded)
			}
			if tt.decoded {
				if _, ok := got["rate"].(json.Number); !ok {
					t.Errorf("Jwget() rate = %T, want json.Number", got["rate"])
				}
			}
		})
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		jval    any
		want    string
		wantErr bool
	}{
		{json.Number("0.1"), "0.1", false},
		{[]any{json.Number("42")}, "42", false},
		{1.5, "1.5", false},
		{"x", "", true},
		{nil, "", true},
	}
	for _, tt := range tests {
		got, err := ToDecimal(tt.jval)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToDecimal(%v) error = %v, wantErr %v", tt.jval, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ToDecimal(%v) = %s, want %s", tt.jval, got, tt.want)
		}
	}
}
