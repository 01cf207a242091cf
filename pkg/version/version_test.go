package version

import (
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.GitCommit == "" {
		t.Error("GitCommit should not be empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should be set by runtime.Version()")
	}
	if info.Platform == "" {
		t.Error("Platform should be set by runtime.GOOS/GOARCH")
	}
	if !info.BuildTime.IsZero() {
		t.Errorf("BuildTime should be zero for BuildDate %q", BuildDate)
	}
}

func TestGetBuildInfo_ParsesValidDate(t *testing.T) {
	originalBuildDate := BuildDate
	defer func() { BuildDate = originalBuildDate }()

	BuildDate = "2026-01-13T20:00:00Z"
	info := GetBuildInfo()

	want, _ := time.Parse(time.RFC3339, BuildDate)
	if !info.BuildTime.Equal(want) {
		t.Errorf("BuildTime = %v, want %v", info.BuildTime, want)
	}
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{Version: "v1.2.0", GitCommit: "abc123", BuildDate: "2026-01-13"}
	if got, want := info.String(), "v1.2.0 (commit: abc123, built: 2026-01-13)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
