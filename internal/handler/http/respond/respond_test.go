package respond

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestError_Shape(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, 404, CodeEntityNotFound, "Entity configuration not found",
		"Entity not found for slug: ghost", "Entity Lookup")

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error != "Entity configuration not found" {
		t.Errorf("Error = %q", body.Error)
	}
	if body.Code != CodeEntityNotFound {
		t.Errorf("Code = %q", body.Code)
	}
	if body.Context != "Entity Lookup" {
		t.Errorf("Context = %q", body.Context)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", body.Timestamp, err)
	}
}

func TestError_OmitsEmptyOptionalFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, 400, CodeInvalidRequest, "Missing required parameter", "", "")

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["details"]; ok {
		t.Error("details present in body, want omitted when empty")
	}
	if _, ok := raw["context"]; ok {
		t.Error("context present in body, want omitted when empty")
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalError(rec, "Request Processing",
		errors.New("pq: connection to postgres://app:hunter2@db:5432 failed"))

	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error != "Internal Server Error" {
		t.Errorf("Error = %q, want generic message", body.Error)
	}
	if body.Details != "" {
		t.Errorf("Details = %q, want empty for internal errors", body.Details)
	}
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "anthropic key",
			in:   "auth failed for sk-ant-abc123XYZ",
			want: "auth failed for sk-ant-****",
		},
		{
			name: "openai key",
			in:   "auth failed for sk-abcdefghij123",
			want: "auth failed for sk-****",
		},
		{
			name: "dsn password",
			in:   "dial postgres://app:hunter2@db:5432/prod",
			want: "dial postgres://app:****@db:5432/prod",
		},
		{
			name: "nothing sensitive",
			in:   "connection refused",
			want: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeError(errors.New(tt.in)); got != tt.want {
				t.Errorf("SanitizeError(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
