package access

import "testing"

func TestSanitizeReturnTo(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"plain path", "/settings", "/settings"},
		{"path with query", "/settings?tab=billing", "/settings?tab=billing"},
		{"protocol relative", "//evil.com", "/"},
		{"backslash protocol relative", `/\evil.com`, "/"},
		{"absolute url", "https://evil.com", "/"},
		{"no leading slash", "settings", "/"},
		{"triple slash", "///evil.com", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeReturnTo(tt.path); got != tt.want {
				t.Errorf("SanitizeReturnTo(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
