package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.Equal(t, GoVersion, info.GoVersion)
	assert.Equal(t, OS, info.OS)
	assert.Equal(t, Arch, info.Arch)
}

func TestInfoStrings(t *testing.T) {
	info := Info{
		Version:   "1.2.3",
		GitCommit: "abc123",
		BuildTime: "2024-01-01T00:00:00Z",
		GoVersion: "go1.23.0",
		OS:        "linux",
		Arch:      "amd64",
	}

	assert.Equal(t, "vtc 1.2.3", info.Short())
	assert.Equal(t, "vtc 1.2.3 (commit: abc123, built: 2024-01-01T00:00:00Z, go: go1.23.0, os/arch: linux/amd64)", info.String())
}

func TestLdflagsWin(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "9.9.9"
	assert.Equal(t, "9.9.9", GetInfo().Version)
	assert.True(t, strings.HasPrefix(GetInfo().Short(), "vtc 9.9.9"))
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortCommit("0123456789abcdef0123"))
	assert.Equal(t, "abc", shortCommit("abc"))
}
