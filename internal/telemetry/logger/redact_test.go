package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestRedactSensitive_KeyName(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("loaded", "db_password", "hunter2", "host", "db.local")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["db_password"] != redactedValue {
		t.Errorf("db_password = %v, want redacted", entry["db_password"])
	}
	if entry["host"] != "db.local" {
		t.Errorf("host = %v, want db.local", entry["host"])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"GITHUB_TOKEN", true},
		{"clientSecret", true},
		{"api_key", true},
		{"name", false},
		{"stopPeers", false},
	}
	for _, tt := range tests {
		if got := IsSensitiveKey(tt.key); got != tt.want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	in := map[string]any{
		"name":  "svc",
		"token": "abc",
		"empty_secret": "",
		"nested": map[string]any{
			"password": 1234,
			"list":     []any{map[string]any{"auth": "x", "ok": true}},
		},
		"credentials": map[string]any{"user": "u"},
	}

	out := Redact(in).(map[string]any)

	if out["name"] != "svc" {
		t.Errorf("name = %v, want svc", out["name"])
	}
	if out["token"] != redactedValue {
		t.Errorf("token = %v, want redacted", out["token"])
	}
	if out["empty_secret"] != "" {
		t.Errorf("empty_secret = %v, want empty string kept", out["empty_secret"])
	}
	nested := out["nested"].(map[string]any)
	if nested["password"] != redactedValue {
		t.Errorf("nested.password = %v, want redacted", nested["password"])
	}
	item := nested["list"].([]any)[0].(map[string]any)
	if item["auth"] != redactedValue || item["ok"] != true {
		t.Errorf("list item = %v", item)
	}
	// Maps under sensitive keys are walked, not replaced.
	if creds := out["credentials"].(map[string]any); creds["user"] != "u" {
		t.Errorf("credentials = %v", creds)
	}

	// Input untouched.
	if in["token"] != "abc" {
		t.Error("Redact modified its input")
	}
}
