package version

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	version := GetVersion()

	if version == "" {
		t.Error("GetVersion() returned empty string")
	}

	if version != Version {
		t.Errorf("GetVersion() = %v, want %v", version, Version)
	}
}

func TestGetFullVersion(t *testing.T) {
	got := GetFullVersion()

	if got == "" {
		t.Error("GetFullVersion() returned empty string")
	}

	if !strings.Contains(got, Version) {
		t.Errorf("GetFullVersion() = %v, should contain %v", got, Version)
	}
}

func TestVersionFormat(t *testing.T) {
	// Version should follow semantic versioning (e.g., "1.0.0")
	parts := strings.Split(Version, ".")

	if len(parts) != 3 {
		t.Errorf("Version format invalid: %v, expected X.Y.Z format", Version)
	}

	for _, part := range parts {
		if part == "" {
			t.Errorf("Version has empty component: %v", Version)
		}
	}
}
