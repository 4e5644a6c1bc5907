// Package buildinfo exposes build metadata for vitals-server.
//
// Version, Commit and BuildTime are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/vitals/internal/infra/buildinfo.Version=v1.0.0"
//
// When they are not injected, Commit and BuildTime fall back to the VCS
// stamp recorded by the Go toolchain.
package buildinfo
