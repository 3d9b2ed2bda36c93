package version

import (
	"strings"
	"testing"
	"time"
)

func stamp(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBranch, origBuildTime, origGoVersion :=
		Version, GitCommit, GitBranch, BuildTime, GoVersion
	t.Cleanup(func() {
		Version = origVersion
		GitCommit = origCommit
		GitBranch = origBranch
		BuildTime = origBuildTime
		GoVersion = origGoVersion
	})
	Version, GitCommit, GitBranch, BuildTime, GoVersion = version, commit, branch, buildTime, "go1.26.0"
}

func TestGetStamped(t *testing.T) {
	stamp(t, "1.2.0", "abc1234", "main", "2026-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.2.0" || !info.IsRelease {
		t.Errorf("Version = %q IsRelease = %v", info.Version, info.IsRelease)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("GitCommit = %q", info.GitCommit)
	}
	if info.GoVersion != "go1.26.0" {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !info.BuildDate.Equal(want) {
		t.Errorf("BuildDate = %v, want %v", info.BuildDate, want)
	}
}

func TestGetReleaseDetection(t *testing.T) {
	tests := []struct {
		version string
		release bool
	}{
		{"dev", false},
		{"1.0.0", true},
		{"1.0.0-dirty", false},
	}
	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			stamp(t, tc.version, "abc1234", "", "")
			if got := Get().IsRelease; got != tc.release {
				t.Errorf("IsRelease = %v, want %v", got, tc.release)
			}
		})
	}
}

func TestInfoShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"no commit", Info{Version: "dev"}, "dev"},
		{"commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.want {
				t.Errorf("Short() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInfoFull(t *testing.T) {
	built := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	t.Run("main branch hidden", func(t *testing.T) {
		info := Info{Version: "1.0.0", GitCommit: "abc1234", GitBranch: "main", BuildDate: built}
		got := info.Full()
		if got != "1.0.0-abc1234 (built 2026-01-15T10:30:00Z)" {
			t.Errorf("Full() = %q", got)
		}
	})

	t.Run("feature branch shown", func(t *testing.T) {
		info := Info{Version: "1.0.0", GitCommit: "abc1234", GitBranch: "feature/retry"}
		if got := info.Full(); !strings.Contains(got, "feature/retry") {
			t.Errorf("Full() = %q", got)
		}
	})

	t.Run("dirty", func(t *testing.T) {
		info := Info{Version: "dev", IsDirty: true}
		if got := info.Full(); got != "dev-dirty" {
			t.Errorf("Full() = %q", got)
		}
	})
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("shortCommit = %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("shortCommit = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	stamp(t, "1.2.0", "", "", "")
	if got := UserAgent(); got != "jig/1.2.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
