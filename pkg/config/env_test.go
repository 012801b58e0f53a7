package config

import (
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := GetEnvString("TEST_STRING", "fallback"); got != "value" {
		t.Fatalf("want value, got %q", got)
	}
	if got := GetEnvString("TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("want fallback, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := GetEnvInt("TEST_INT", 7); got != 42 {
		t.Fatalf("want 42, got %d", got)
	}

	t.Setenv("TEST_INT_BAD", "not-a-number")
	if got := GetEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Fatalf("want default on parse error, got %d", got)
	}

	if got := GetEnvInt("TEST_INT_MISSING", 7); got != 7 {
		t.Fatalf("want default when unset, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true}, {"true", true}, {"True", true}, {"t", true},
		{"0", false}, {"false", false}, {"FALSE", false}, {"f", false},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tc.value)
			if got := GetEnvBool("TEST_BOOL", !tc.want); got != tc.want {
				t.Fatalf("GetEnvBool(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}

	t.Setenv("TEST_BOOL_BAD", "maybe")
	if got := GetEnvBool("TEST_BOOL_BAD", true); got != true {
		t.Fatal("want default on invalid value")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	if got := GetEnvDuration("TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Fatalf("want 90s, got %v", got)
	}

	t.Setenv("TEST_DURATION_BAD", "soon")
	if got := GetEnvDuration("TEST_DURATION_BAD", time.Minute); got != time.Minute {
		t.Fatalf("want default on parse error, got %v", got)
	}
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("TEST_LIST", "a, b , ,c")
	got := GetEnvStringList("TEST_LIST", []string{"x"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("want [a b c], got %v", got)
	}

	if got := GetEnvStringList("TEST_LIST_MISSING", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("want default, got %v", got)
	}
}

func TestValidateDurations(t *testing.T) {
	if err := ValidatePositiveDuration(0); err == nil {
		t.Fatal("want error for zero duration")
	}
	if err := ValidatePositiveDuration(time.Second); err != nil {
		t.Fatalf("want nil, got %v", err)
	}

	if err := ValidateDurationRange(time.Second, time.Millisecond, time.Minute); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	if err := ValidateDurationRange(time.Hour, time.Millisecond, time.Minute); err == nil {
		t.Fatal("want error above max")
	}
	if err := ValidateDurationRange(time.Second, time.Minute, time.Millisecond); err == nil {
		t.Fatal("want error for inverted range")
	}

	if err := ValidateNonNegativeDuration(0); err != nil {
		t.Fatalf("zero is allowed, got %v", err)
	}
	if err := ValidateNonNegativeDuration(-time.Second); err == nil {
		t.Fatal("want error for negative duration")
	}
}
