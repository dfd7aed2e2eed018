package version

import (
	"strings"
	"testing"
)

func TestBuildIDFor(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{name: "epoch date", date: "2026-03-02", expected: 0},
		{name: "next day after epoch", date: "2026-03-03", expected: 1},
		{name: "one year later", date: "2027-03-02", expected: 365},
		{name: "leap day included", date: "2030-03-02", expected: 1461},
		{name: "invalid format", date: "02.03.2026", wantError: true},
		{name: "empty date", date: "", wantError: true},
		{name: "before epoch", date: "2026-03-01", wantError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildIDFor(tt.date)

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil (id=%d)", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("BuildIDFor(%q) = %d, want %d", tt.date, got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	old := BuildDate
	defer func() { BuildDate = old }()

	BuildDate = ""
	if s := String(); !strings.Contains(s, "build unknown") {
		t.Errorf("String() = %q, want unknown build", s)
	}

	BuildDate = "2026-03-12"
	s := String()
	if !strings.HasPrefix(s, Service+" build 10 ") {
		t.Errorf("String() = %q, want build 10", s)
	}
	if !strings.Contains(s, "commit[unknown]") || !strings.Contains(s, "ci[local]") {
		t.Errorf("String() = %q, want fallbacks", s)
	}
}
