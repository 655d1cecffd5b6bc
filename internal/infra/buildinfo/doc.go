// Package buildinfo provides build information for sumconf.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/sumconf-go/internal/infra/buildinfo.Version=v1.0.0"
//
// When they are not, the module version and VCS stamp recorded by the Go
// toolchain are used instead.
package buildinfo
