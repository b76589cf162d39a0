package cli

import (
	"runtime/debug"
)

var buildVersion = "dev"

func init() {
	buildVersion = resolveBuildVersion(buildVersion)
}

// resolveBuildVersion prefers a version set at link time, then the module
// version recorded by go install.
func resolveBuildVersion(defaultVersion string) string {
	if defaultVersion != "" && defaultVersion != "dev" {
		return defaultVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return defaultVersion
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return defaultVersion
	}
	return info.Main.Version
}
