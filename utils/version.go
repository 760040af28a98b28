package utils

import (
	"fmt"
	"runtime"
)

// These should be set at build time using -ldflags
var (
	VersionMajor = "0"
	VersionMinor = "1"
	VersionPatch = "0"
	Branch       = "main"
	Commit       = "dev"
	BuildDate    = "unknown"
)

// Version carries both the short tag and the fully qualified version string.
type Version struct {
	Tag string `json:"tag"`
	Str string `json:"str"`
}

// GetVersion constructs the version information for the service.
func GetVersion() Version {
	commitShort := Commit
	if len(Commit) > 7 {
		commitShort = Commit[:7]
	}

	tag := fmt.Sprintf("%s.%s.%s", VersionMajor, VersionMinor, VersionPatch)
	str := fmt.Sprintf("%s-%s+%s.%s.%s/%s",
		tag, Branch, commitShort, BuildDate, runtime.GOOS, runtime.GOARCH)

	return Version{Tag: tag, Str: str}
}
