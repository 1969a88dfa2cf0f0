package utils

import (
	"testing"
	"time"
)

func TestGetEnvFallsBackOnBlank(t *testing.T) {
	t.Setenv("SA_TEST_BLANK", "   ")
	if got := GetEnv("SA_TEST_BLANK", "dflt", nil); got != "dflt" {
		t.Fatalf("expected default, got %q", got)
	}
	t.Setenv("SA_TEST_SET", " value ")
	if got := GetEnv("SA_TEST_SET", "dflt", nil); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}

func TestGetEnvAsIntAndBool(t *testing.T) {
	t.Setenv("SA_TEST_INT", "12")
	if got := GetEnvAsInt("SA_TEST_INT", 3, nil); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("SA_TEST_INT", "twelve")
	if got := GetEnvAsInt("SA_TEST_INT", 3, nil); got != 3 {
		t.Fatalf("expected default on parse error, got %d", got)
	}
	t.Setenv("SA_TEST_BOOL", "yes")
	if !GetEnvAsBool("SA_TEST_BOOL", false, nil) {
		t.Fatalf("expected true")
	}
	t.Setenv("SA_TEST_BOOL", "maybe")
	if GetEnvAsBool("SA_TEST_BOOL", false, nil) {
		t.Fatalf("expected default false")
	}
}

func TestGetEnvAsSeconds(t *testing.T) {
	t.Setenv("SA_TEST_SECS", "45")
	if got := GetEnvAsSeconds("SA_TEST_SECS", time.Minute, nil); got != 45*time.Second {
		t.Fatalf("expected 45s, got %s", got)
	}
	if got := GetEnvAsSeconds("SA_TEST_SECS_MISSING", time.Minute, nil); got != time.Minute {
		t.Fatalf("expected default, got %s", got)
	}
}

func TestGetEnvAsFloatAndList(t *testing.T) {
	t.Setenv("SA_TEST_FLOAT", "0.25")
	if got := GetEnvAsFloat("SA_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
	t.Setenv("SA_TEST_FLOAT", "quarter")
	if got := GetEnvAsFloat("SA_TEST_FLOAT", 1, nil); got != 1 {
		t.Fatalf("expected default on parse error, got %v", got)
	}
	t.Setenv("SA_TEST_LIST", " https://a.example , ,https://b.example")
	got := GetEnvAsList("SA_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected list %q", got)
	}
	if GetEnvAsList("SA_TEST_LIST_MISSING", nil) != nil {
		t.Fatalf("expected nil for missing list")
	}
}
