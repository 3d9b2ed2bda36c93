// Package version reports the build identity of the jig binary.
//
// Version, commit, branch and build time are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/jig/version.Version=1.2.0 \
//	    -X github.com/kbukum/jig/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/jig
//
// Unstamped builds fall back to the VCS settings recorded by the Go toolchain.
package version
