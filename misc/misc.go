// Package misc provides program identification helpers shared by all commands.
package misc

import (
	"os"
	"path/filepath"
	"runtime/debug"
)

// set by the build (-ldflags "-X lcm/misc.version=... -X lcm/misc.gitHash=...")
var (
	version = ""
	gitHash = ""
)

// GetAppName returns the name of the running executable without extension.
func GetAppName() string {
	name, err := os.Executable()
	if err != nil {
		return "lcm"
	}
	name = filepath.Base(name)
	return name[:len(name)-len(filepath.Ext(name))]
}

// GetVersion returns program version, falling back to module build info when
// not set by the build.
func GetVersion() string {
	if len(version) != 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) != 0 {
		return bi.Main.Version
	}
	return "unknown"
}

// GetGitHash returns the vcs revision recorded in build info.
func GetGitHash() string {
	if len(gitHash) != 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
