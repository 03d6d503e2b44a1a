package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("ATELIER_TEST_URL", "http://backend:7777")
	t.Setenv("ATELIER_TEST_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "url: ${ATELIER_TEST_URL}", "url: http://backend:7777"},
		{"unset variable", "team: ${ATELIER_TEST_UNSET}", "team: "},
		{"unset with default", "team: ${ATELIER_TEST_UNSET:-product-studio}", "team: product-studio"},
		{"empty uses default", "team: ${ATELIER_TEST_EMPTY:-fallback}", "team: fallback"},
		{"set ignores default", "url: ${ATELIER_TEST_URL:-http://other}", "url: http://backend:7777"},
		{"no patterns", "plain: value", "plain: value"},
		{"multiple patterns", "${ATELIER_TEST_URL}/${ATELIER_TEST_UNSET:-runs}", "http://backend:7777/runs"},
		{"malformed braces untouched", "x: ${not closed", "x: ${not closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
