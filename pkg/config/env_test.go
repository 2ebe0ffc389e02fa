package config

import (
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	if got := GetEnvString("TEST_UNSET_STRING", "fallback"); got != "fallback" {
		t.Errorf("GetEnvString() = %q, want fallback", got)
	}
	t.Setenv("TEST_SET_STRING", "value")
	if got := GetEnvString("TEST_SET_STRING", "fallback"); got != "value" {
		t.Errorf("GetEnvString() = %q, want value", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{name: "unset", value: "", def: 42, want: 42},
		{name: "valid", value: "7", def: 42, want: 7},
		{name: "invalid falls back", value: "seven", def: 42, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_INT", tt.value)
			}
			if got := GetEnvInt("TEST_INT", tt.def); got != tt.want {
				t.Errorf("GetEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{name: "unset", value: "", def: true, want: true},
		{name: "true", value: "true", def: false, want: true},
		{name: "numeric false", value: "0", def: true, want: false},
		{name: "invalid falls back", value: "yes", def: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_BOOL", tt.value)
			}
			if got := GetEnvBool("TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("GetEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	if got := GetEnvDuration("TEST_UNSET_DURATION", time.Minute); got != time.Minute {
		t.Errorf("GetEnvDuration() = %v, want 1m", got)
	}
	t.Setenv("TEST_DURATION", "90s")
	if got := GetEnvDuration("TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Errorf("GetEnvDuration() = %v, want 90s", got)
	}
	t.Setenv("TEST_DURATION", "soon")
	if got := GetEnvDuration("TEST_DURATION", time.Minute); got != time.Minute {
		t.Errorf("GetEnvDuration() = %v, want fallback 1m", got)
	}
}

func TestGetEnvStringList(t *testing.T) {
	if got := GetEnvStringList("TEST_UNSET_LIST", []string{"a"}); len(got) != 1 || got[0] != "a" {
		t.Errorf("GetEnvStringList() = %v, want [a]", got)
	}
	t.Setenv("TEST_LIST", " one , two ,, three ")
	got := GetEnvStringList("TEST_LIST", nil)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("GetEnvStringList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetEnvStringList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	if err := ValidatePositiveDuration(time.Second); err != nil {
		t.Errorf("ValidatePositiveDuration(1s) = %v, want nil", err)
	}
	if err := ValidatePositiveDuration(0); err == nil {
		t.Error("ValidatePositiveDuration(0) = nil, want error")
	}
	if err := ValidatePositiveDuration(-time.Second); err == nil {
		t.Error("ValidatePositiveDuration(-1s) = nil, want error")
	}
}
